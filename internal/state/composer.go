package state

import "unicode"

// Composer is the editable message buffer. The cursor is a rune offset in
// [0, rune length of the text].
type Composer struct {
	text   []rune
	cursor int
}

// Text returns the buffer contents.
func (c *Composer) Text() string {
	return string(c.text)
}

// Len returns the buffer length in runes.
func (c *Composer) Len() int {
	return len(c.text)
}

// Cursor returns the cursor's rune offset.
func (c *Composer) Cursor() int {
	if c.cursor < 0 {
		return 0
	}
	if c.cursor > len(c.text) {
		return len(c.text)
	}
	return c.cursor
}

// Set replaces the buffer, clamping cursor into range.
func (c *Composer) Set(text string, cursor int) {
	c.text = []rune(text)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(c.text) {
		cursor = len(c.text)
	}
	c.cursor = cursor
}

// Reset empties the buffer.
func (c *Composer) Reset() {
	c.text = nil
	c.cursor = 0
}

// Insert places text at the cursor and advances the cursor past it.
func (c *Composer) Insert(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	pos := c.Cursor()
	updated := make([]rune, 0, len(c.text)+len(insert))
	updated = append(updated, c.text[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, c.text[pos:]...)
	c.text = updated
	c.cursor = pos + len(insert)
	return true
}

// DeleteBackward removes the rune before the cursor.
func (c *Composer) DeleteBackward() bool {
	pos := c.Cursor()
	if pos == 0 {
		return false
	}
	c.text = append(c.text[:pos-1], c.text[pos:]...)
	c.cursor = pos - 1
	return true
}

// DeleteWordBackward removes the word preceding the cursor along with any
// whitespace between it and the cursor.
func (c *Composer) DeleteWordBackward() bool {
	pos := c.Cursor()
	if pos == 0 {
		return false
	}
	i := wordStart(c.text, pos)
	c.text = append(c.text[:i], c.text[pos:]...)
	c.cursor = i
	return true
}

func (c *Composer) MoveLeft() bool {
	if c.Cursor() == 0 {
		return false
	}
	c.cursor = c.Cursor() - 1
	return true
}

func (c *Composer) MoveRight() bool {
	if c.Cursor() >= len(c.text) {
		return false
	}
	c.cursor = c.Cursor() + 1
	return true
}

func (c *Composer) MoveStart() bool {
	if c.Cursor() == 0 {
		return false
	}
	c.cursor = 0
	return true
}

func (c *Composer) MoveEnd() bool {
	if c.Cursor() == len(c.text) {
		return false
	}
	c.cursor = len(c.text)
	return true
}

// MoveWordBackward moves the cursor to the start of the previous word.
func (c *Composer) MoveWordBackward() bool {
	pos := c.Cursor()
	i := wordStart(c.text, pos)
	if i == pos {
		return false
	}
	c.cursor = i
	return true
}

// MoveWordForward moves the cursor past the next word.
func (c *Composer) MoveWordForward() bool {
	pos := c.Cursor()
	i := pos
	for i < len(c.text) && !unicode.IsSpace(c.text[i]) {
		i++
	}
	for i < len(c.text) && unicode.IsSpace(c.text[i]) {
		i++
	}
	if i == pos {
		return false
	}
	c.cursor = i
	return true
}

func wordStart(runes []rune, pos int) int {
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	return i
}
