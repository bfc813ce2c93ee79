package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// heartbeatInterval must stay well under the master's registration TTL.
const heartbeatInterval = 30 * time.Second

// StatusSource reports what the master lists for this server. *Server
// satisfies it.
type StatusSource interface {
	Status() Status
}

// Registration handles registering and heartbeating with the master server.
type Registration struct {
	masterURL string
	serverID  string
	name      string
	address   string
	version   string
	level     string
	source    StatusSource
	client    *http.Client
	stopCh    chan struct{}
}

type regRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
	Level      string `json:"level"`
	Phase      string `json:"phase"`
}

type regResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	Phase   string `json:"phase"`
}

func NewRegistration(masterURL, name, address, version, level string, source StatusSource) *Registration {
	return &Registration{
		masterURL: masterURL,
		name:      name,
		address:   address,
		version:   version,
		level:     level,
		source:    source,
		client:    &http.Client{Timeout: 5 * time.Second},
		stopCh:    make(chan struct{}),
	}
}

func (r *Registration) Start() {
	if err := r.register(); err != nil {
		log.Printf("[registration] initial registration failed: %v", err)
	}
	go r.heartbeatLoop()
}

func (r *Registration) Stop() {
	close(r.stopCh)
}

func (r *Registration) register() error {
	st := r.source.Status()
	body, err := json.Marshal(regRequest{
		Name:       r.name,
		Address:    r.address,
		Players:    st.Players,
		MaxPlayers: st.Capacity,
		Version:    r.version,
		Level:      r.level,
		Phase:      st.Phase.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.client.Post(r.masterURL+"/servers/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result regResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	r.serverID = result.ID
	log.Printf("[registration] registered with master (id=%s)", r.serverID)
	return nil
}

func (r *Registration) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			if r.serverID == "" {
				if err := r.register(); err != nil {
					log.Printf("[registration] registration retry failed: %v", err)
				}
				continue
			}
			if err := r.sendHeartbeat(); err != nil {
				log.Printf("[registration] heartbeat failed: %v", err)
			}
		}
	}
}

func (r *Registration) sendHeartbeat() error {
	st := r.source.Status()
	body, err := json.Marshal(heartbeatRequest{
		ID:      r.serverID,
		Players: st.Players,
		Phase:   st.Phase.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.client.Post(r.masterURL+"/servers/heartbeat", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Println("[registration] master lost our registration, re-registering")
		return r.register()
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
