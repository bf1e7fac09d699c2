// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wire

import "strings"

// Command is a parsed request: a name plus an ordered argument list of
// Values (spec §3). Construction canonicalises the name to lowercase
// ASCII, matching the runtime's case-insensitive routing for the four
// built-ins and case-sensitive (post-lowering) matching for user names.
type Command struct {
	Name string
	Args []Value
}

// NewCommand builds a Command from a name, which is lower-cased, and its
// argument list. FromArray does the same starting from an Array's elements.
func NewCommand(name string, args []Value) Command {
	return Command{Name: strings.ToLower(name), Args: args}
}

// FromArray builds a Command out of a decoded Array Value, the shape
// every request takes on the wire (spec §6). It fails if values is empty
// or its first element has no string form.
func FromArray(values []Value) (Command, bool) {
	if len(values) == 0 {
		return Command{}, false
	}
	name, ok := values[0].AsString()
	if !ok {
		return Command{}, false
	}
	return NewCommand(name, values[1:]), true
}

// PopFront removes and returns the first argument, or Null if there are
// none left.
func (c *Command) PopFront() Value {
	if len(c.Args) == 0 {
		return Null
	}
	v := c.Args[0]
	c.Args = c.Args[1:]
	return v
}

// Len reports the number of remaining arguments.
func (c *Command) Len() int { return len(c.Args) }
