package models

// NoticeLevel mirrors the severity of a user-facing message
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message the booking UI shows to the user
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
