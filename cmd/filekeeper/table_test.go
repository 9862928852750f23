package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, [][]string{{"x"}}))

	out := renderTable([]string{"Name", "Size"}, [][]string{
		{"a.txt", "1 B"},
		{"long-name.txt"},
	}, 1)
	lines := strings.Split(out, "\n")
	assert.Contains(t, out, "long-name.txt")
	assert.Contains(t, out, "│  1 B │")
	assert.Contains(t, out, "│ SIZE │")
	for _, line := range lines[1:] {
		assert.Equal(t, len([]rune(lines[0])), len([]rune(line)), line)
	}
}

func TestFormatStamp(t *testing.T) {
	assert.Equal(t, "yesterday", formatStamp("yesterday"))
	assert.Len(t, formatStamp("2024-05-01T10:20:30Z"), len(stampLayout))
	assert.Equal(t, "-", humanBytes(-1))
	assert.Equal(t, "1.0 KiB", humanBytes(1024))
}
