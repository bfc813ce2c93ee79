// Package assets embeds the level files shipped with the server.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed all:levels
var levelFS embed.FS

// LevelsDir is the directory inside FS that holds the .tmx files.
const LevelsDir = "levels"

// FS returns the embedded asset filesystem.
func FS() fs.FS {
	return levelFS
}
