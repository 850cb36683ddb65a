package fs

import (
	"bytes"
	"io"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestPrint_EmptyFS(t *testing.T) {
	testFS := fstest.MapFS{}

	output := captureOutput(func() {
		Print("Test FS", testFS)
	})

	assert.Contains(t, output, "Test FS:")
}

func TestPrint_WithFiles(t *testing.T) {
	testFS := fstest.MapFS{
		"rain.html.tmpl": &fstest.MapFile{
			Data: []byte("<!DOCTYPE html>"),
		},
		"error.tmpl": &fstest.MapFile{
			Data: []byte("error"),
		},
	}

	output := captureOutput(func() {
		Print("Templates", testFS)
	})

	assert.Contains(t, output, "Templates:")
	assert.Contains(t, output, "rain.html.tmpl")
	assert.Contains(t, output, "error.tmpl")
	assert.Contains(t, output, "📄")
}

func TestPrint_WithDirectories(t *testing.T) {
	testFS := fstest.MapFS{
		"style.css": &fstest.MapFile{
			Data: []byte("body {}"),
		},
		"img/drop.svg": &fstest.MapFile{
			Data: []byte("<svg/>"),
		},
		"img/icons/umbrella.svg": &fstest.MapFile{
			Data: []byte("<svg/>"),
		},
	}

	output := captureOutput(func() {
		Print("Static", testFS)
	})

	assert.Contains(t, output, "style.css")
	assert.Contains(t, output, "img/")
	assert.Contains(t, output, "drop.svg")
	assert.Contains(t, output, "icons/")
	assert.Contains(t, output, "umbrella.svg")
	assert.Contains(t, output, "📁")
}
