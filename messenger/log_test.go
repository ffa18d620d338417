package messenger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogDropsOldest(t *testing.T) {
	l := NewLog(2)
	l.Append("a")
	l.Append("b")
	l.Append("c")

	assert.Equal(t, []string{"b", "c"}, l.Snapshot())
	assert.Equal(t, 2, l.Len())
}

func TestLogTail(t *testing.T) {
	l := NewLog(10)
	for _, s := range []string{"a", "b", "c"} {
		l.Append(s)
	}
	assert.Equal(t, []string{"b", "c"}, l.Tail(2))
	assert.Equal(t, []string{"a", "b", "c"}, l.Tail(50))
	assert.Nil(t, l.Tail(0))

	l.Clear()
	assert.Empty(t, l.Snapshot())
}

func TestLogDefaultLimit(t *testing.T) {
	l := NewLog(0)
	for i := 0; i < 1500; i++ {
		l.Append("x")
	}
	assert.Equal(t, 1000, l.Len())
}
