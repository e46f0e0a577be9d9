package models

// PlaybackSession records one playback decision for history and diagnostics.
// Rows are pruned by the retention scheduler.
type PlaybackSession struct {
	BaseModel

	ItemID        string         `gorm:"index;not null" json:"item_id"`
	MediaSourceID string         `json:"media_source_id"`
	PlaySessionID string         `gorm:"index" json:"play_session_id"`
	Method        PlaybackMethod `gorm:"type:varchar(16);index" json:"method"`

	VideoCodec string `json:"video_codec"`
	AudioCodec string `json:"audio_codec"`
	Container  string `json:"container"`
	Bitrate    int64  `json:"bitrate"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`

	Quality TranscodingQuality `gorm:"type:varchar(16)" json:"quality"`
	Reason  string             `json:"reason"`
	Forced  bool               `json:"forced"`

	NetworkType    NetworkType    `gorm:"type:varchar(16)" json:"network_type"`
	NetworkQuality NetworkQuality `gorm:"type:varchar(16)" json:"network_quality"`
}

// TableName returns the database table name.
func (PlaybackSession) TableName() string {
	return "playback_sessions"
}

// Validate checks the session record for required fields.
func (s *PlaybackSession) Validate() error {
	if s.ItemID == "" {
		return ErrItemIDRequired
	}
	return nil
}
