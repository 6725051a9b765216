package types

// Device is a registered app install. user_type transitions one-way from
// free to premium via the admin promote action; everything else is written
// by upstream app telemetry and read-only here.
type Device struct {
	ID                 int64   `json:"id"`
	DeviceID           string  `json:"device_id"`
	ExpoNotificationID *string `json:"expo_notification_id"`
	CreatedAt          int64   `json:"created_at"`
	UpdatedAt          int64   `json:"updated_at"`
	ImagesLimit        int     `json:"images_limit"`
	UserType           string  `json:"user_type"`
}

// DeviceAlias is an optional human-readable name bound 1:1 to a device
// identifier. Read-only from this system's perspective.
type DeviceAlias struct {
	ID         int64  `json:"id"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

// Session is a single recording/generation session belonging to one device.
type Session struct {
	ID                 int64   `json:"id"`
	SessionID          string  `json:"session_id"`
	DeviceID           string  `json:"device_id"`
	RecordingS3Key     *string `json:"recording_s3_key"`
	TranscriptionS3Key *string `json:"transcription_s3_key"`
	Generations        string  `json:"generations"`
	TotalGenerations   int     `json:"total_generations"`
	DurationSeconds    int     `json:"duration_seconds"`
	Status             string  `json:"status"`
	StartedAt          int64   `json:"started_at"`
	EndedAt            int64   `json:"ended_at"`
	CreatedAt          int64   `json:"created_at"`
	IsListened         int     `json:"is_listened"`
}

// SupportRequest is a user-filed ticket belonging to one device.
type SupportRequest struct {
	ID        int64  `json:"id"`
	DeviceID  string `json:"device_id"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}
