package host

import "sync"

// Clipboard is the host text clipboard
type Clipboard interface {
	HasText() bool
	Text() string
	SetText(s string)
}

// MemoryClipboard is a process-local Clipboard
// Zero value is ready to use
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *MemoryClipboard) HasText() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text != ""
}

func (c *MemoryClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *MemoryClipboard) SetText(s string) {
	c.mu.Lock()
	c.text = s
	c.mu.Unlock()
}
