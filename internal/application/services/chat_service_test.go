package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// No API key configured forces the deterministic fallback path.
func newFallbackChatService(t *testing.T) *ChatService {
	t.Helper()
	return NewChatService("", testLogger(t), testTracker())
}

func TestChatFallbackByKeyword(t *testing.T) {
	svc := newFallbackChatService(t)

	cases := []struct {
		question string
		expected string
	}{
		{"มีสาขาอะไรบ้าง", fallbackPrograms},
		{"อยากเรียนต่อที่นี่", fallbackPrograms},
		{"ค่าเทอมเท่าไหร่", fallbackTuition},
		{"ค่าเรียนแพงไหม", fallbackTuition},
		{"สมัครเรียนยังไง", fallbackApply},
		{"ติดต่อวิทยาลัยได้ที่ไหน", fallbackContact},
		{"เบอร์โทรวิทยาลัย", fallbackContact},
		{"สวัสดีครับ", fallbackGeneric},
	}

	for _, tc := range cases {
		reply := svc.Ask(context.Background(), "sess-1", tc.question)
		assert.True(t, reply.Fallback)
		assert.Equal(t, tc.expected, reply.Message, "question: %s", tc.question)
	}
}

func TestChatEmptyQuestion(t *testing.T) {
	svc := newFallbackChatService(t)

	reply := svc.Ask(context.Background(), "sess-1", "   ")
	assert.True(t, reply.Fallback)
	assert.Equal(t, fallbackGeneric, reply.Message)
}
