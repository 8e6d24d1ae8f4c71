// Package services provides the kiosk assistant chat. Questions go to the
// AssemblyAI LeMUR task endpoint; any failure falls back to deterministic
// Thai answers so the kiosk never shows an error to a visitor.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/performance"
)

// ChatService answers visitor questions about the college.
type ChatService struct {
	apiKey      string
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewChatService creates the assistant. An empty apiKey forces fallback mode.
func NewChatService(apiKey string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ChatService {
	return &ChatService{
		apiKey:      apiKey,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ChatReply is one assistant answer.
type ChatReply struct {
	Message  string `json:"message"`
	Fallback bool   `json:"fallback"`
}

const assistantPrompt = `You are the friendly admissions assistant of Lanna Polytechnic College,
a vocational college in Chiang Mai, Thailand. Answer the visitor's question
about programs, tuition, admission and campus life. Answer in Thai, in at most
three short sentences, suitable for a touchscreen kiosk display.`

// Ask answers one visitor question for a session.
func (s *ChatService) Ask(ctx context.Context, sessionID, question string) ChatReply {
	marker := s.perfTracker.StartOperation("chat_ask", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	question = strings.TrimSpace(question)
	if question == "" {
		return ChatReply{Message: fallbackGeneric, Fallback: true}
	}

	if s.apiKey == "" {
		s.logger.Chat().Debug("No LeMUR API key configured, using fallback", "sessionId", sessionID)
		return ChatReply{Message: s.fallbackAnswer(question), Fallback: true}
	}

	start := time.Now()
	client := assemblyai.NewClient(s.apiKey)

	callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var params assemblyai.LeMURTaskParams
	params.Prompt = assemblyai.String(assistantPrompt)
	params.InputText = assemblyai.String(question)
	params.FinalModel = assemblyai.LeMURModel("anthropic/claude-3-5-sonnet")
	params.MaxOutputSize = assemblyai.Int64(500)
	params.Temperature = assemblyai.Float64(0.3)

	response, err := client.LeMUR.Task(callCtx, params)
	if err != nil {
		s.logger.Chat().Error("LeMUR task failed, using fallback",
			"error", err.Error(),
			"sessionId", sessionID,
			"duration", time.Since(start))
		marker.SetError(err)
		return ChatReply{Message: s.fallbackAnswer(question), Fallback: true}
	}

	if response.Response == nil || strings.TrimSpace(*response.Response) == "" {
		s.logger.Chat().Warn("LeMUR returned empty response, using fallback", "sessionId", sessionID)
		return ChatReply{Message: s.fallbackAnswer(question), Fallback: true}
	}

	s.logger.Chat().Info("LeMUR task completed",
		"sessionId", sessionID,
		"duration", time.Since(start))
	return ChatReply{Message: strings.TrimSpace(*response.Response)}
}

// Deterministic Thai answers keyed by topic keywords. These mirror what the
// front desk tells walk-in visitors.
const (
	fallbackPrograms = "วิทยาลัยเปิดสอน 13 สาขา ทั้งช่างอุตสาหกรรม เช่น ช่างยนต์ ยานยนต์ไฟฟ้า ไฟฟ้ากำลัง และพาณิชยกรรม เช่น การบัญชี การตลาด เทคโนโลยีสารสนเทศ สอบถามรายละเอียดแต่ละสาขาได้ที่หน้าจอสาขาวิชาครับ"
	fallbackTuition  = "ค่าเทอมระดับ ปวช. เริ่มต้นประมาณ 4,200-4,500 บาทต่อเทอม และระดับ ปวส. ประมาณ 6,200-6,800 บาทต่อเทอม ดูตารางค่าเรียนทั้งหมดได้ที่หน้าค่าเทอมครับ"
	fallbackApply    = "สมัครเรียนได้ที่ห้องธุรการอาคาร 1 ทุกวันจันทร์-เสาร์ เวลา 08.30-16.30 น. เตรียมสำเนาวุฒิการศึกษา บัตรประชาชน และรูปถ่าย 1 นิ้ว 2 ใบมาด้วยครับ"
	fallbackContact  = "ติดต่อวิทยาลัยได้ที่เบอร์ 053-000-000 หรือเพจ Facebook ของวิทยาลัย เจ้าหน้าที่พร้อมให้ข้อมูลทุกวันทำการครับ"
	fallbackGeneric  = "ขอบคุณสำหรับคำถามครับ สามารถสอบถามเรื่องสาขาวิชา ค่าเทอม หรือการสมัครเรียนได้เลย หรือกดดูข้อมูลจากเมนูบนหน้าจอครับ"
)

// fallbackAnswer picks a static answer by keyword match. Specific keywords
// come first; "ค่าเรียน" and "สมัครเรียน" both contain "เรียน".
func (s *ChatService) fallbackAnswer(question string) string {
	switch {
	case strings.Contains(question, "ค่าเรียน") || strings.Contains(question, "ค่าเทอม"):
		return fallbackTuition
	case strings.Contains(question, "สมัคร"):
		return fallbackApply
	case strings.Contains(question, "ติดต่อ") || strings.Contains(question, "โทร"):
		return fallbackContact
	case strings.Contains(question, "สาขา") || strings.Contains(question, "เรียน"):
		return fallbackPrograms
	default:
		return fallbackGeneric
	}
}
