package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SetupSSEHeaders 设置Server-Sent Events响应头
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// SendSSEEvent 发送带事件类型和序号的SSE消息
func SendSSEEvent(w http.ResponseWriter, flusher http.Flusher, id int, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal sse event %s: %w", event, err)
	}

	if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, event, payload); err != nil {
		return fmt.Errorf("write sse event %s: %w", event, err)
	}
	flusher.Flush()
	return nil
}

// SendSSEComment 发送注释行, 用于保活
func SendSSEComment(w http.ResponseWriter, flusher http.Flusher, comment string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
