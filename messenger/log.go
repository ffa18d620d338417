package messenger

// Log keeps the most recent formatted lines, dropping the oldest when full.
// Log is guarded by the Manager's mutex.
type Log struct {
	lines []string
	limit int
}

// NewLog builds a log holding at most limit lines
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = 1000
	}
	return &Log{limit: limit}
}

// Append stores a new line
func (l *Log) Append(line string) {
	if len(l.lines) >= l.limit {
		n := copy(l.lines, l.lines[1:])
		l.lines = l.lines[:n]
	}
	l.lines = append(l.lines, line)
}

// Snapshot returns a copy of the lines, oldest first
func (l *Log) Snapshot() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Tail returns a copy of the last n lines
func (l *Log) Tail(n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(l.lines) {
		n = len(l.lines)
	}
	out := make([]string, n)
	copy(out, l.lines[len(l.lines)-n:])
	return out
}

func (l *Log) Len() int {
	return len(l.lines)
}

func (l *Log) Clear() {
	l.lines = l.lines[:0]
}
