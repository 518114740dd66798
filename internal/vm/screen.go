package vm

// splitWindow sets the upper window's height in lines.
func (m *VM) splitWindow(lines uint16) error {
	m.screen.splitHeight = int(lines)
	m.host.Send(SplitWindowRequest{Lines: int(lines)})
	return nil
}

// setWindow selects the active window (0 = lower, 1 = upper).
func (m *VM) setWindow(window uint16) error {
	m.screen.lowerActive = window == 0
	m.host.Send(SetWindowRequest{Window: int(window)})
	return nil
}

// eraseWindow clears window (-1 = both and unsplit, -2 = both).
func (m *VM) eraseWindow(window int16) error {
	if window == -1 {
		m.screen.splitHeight = 0
		m.screen.lowerActive = true
	}
	m.host.Send(EraseWindowRequest{Window: int(window)})
	return nil
}

// setCursor positions the cursor in the upper window.
func (m *VM) setCursor(line, column uint16) error {
	m.host.Send(SetCursorRequest{Line: int(line), Column: int(column)})
	return nil
}

// setTextStyle ORs/replaces the active style flags (0 resets to roman).
func (m *VM) setTextStyle(style uint16) error {
	if style == 0 {
		m.screen.style = StyleRoman
	} else {
		m.screen.style |= TextStyle(style)
	}
	m.host.Send(SetTextStyleRequest{Style: m.screen.style})
	return nil
}

// setColour resolves and stores the foreground/background indices,
// forwarding the resolved RGB to the host.
func (m *VM) setColour(foreground, background uint16) error {
	fg := NewColor(foreground, m.screen.foreground, m.screen.defaultForeground)
	bg := NewColor(background, m.screen.background, m.screen.defaultBackground)
	m.screen.foreground = fg
	m.screen.background = bg
	m.host.Send(SetColorRequest{Foreground: fg, Background: bg})
	return nil
}
