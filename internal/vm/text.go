package vm

// print writes decoded game text to whichever output stream(s) are
// active (spec §4.H). Stream 3 (memory redirection) suppresses all
// other streams while selected, per the standard.
func (m *VM) print(s string) error {
	if len(m.streams.memory) > 0 {
		top := &m.streams.memory[len(m.streams.memory)-1]
		for _, r := range s {
			if err := m.mem.WriteByte(top.ptr, uint8(r)); err != nil {
				return err
			}
			top.ptr++
		}
		return nil
	}

	if m.streams.screen {
		m.host.Send(PrintRequest{Window: m.currentWindow(), Text: s})
	}

	if m.streams.transcript {
		m.host.Send(PrintRequest{Window: -1, Text: s})
	}

	return nil
}

func (m *VM) currentWindow() int {
	if m.screen.lowerActive {
		return 0
	}
	return 1
}
