package api

// RegisterRequest registers a new study participant
type RegisterRequest struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	Consent bool   `json:"consent"`
}

// RegisterResponse acknowledges registration
type RegisterResponse struct {
	ParticipantID string `json:"participant_id"`
	Status        string `json:"status"`
}

// SurveyRequest carries Likert-scale survey responses
type SurveyRequest struct {
	ParticipantID string `json:"participant_id"`
	Responses     []int  `json:"responses"`
}

// PhonemeRequest asks for the phoneme sequence of one word
type PhonemeRequest struct {
	Word string `json:"word"`
}

// PhonemeResponse is the flat phoneme string form
type PhonemeResponse struct {
	Word         string `json:"word"`
	Phonemes     string `json:"phonemes"`
	PhonemeCount int    `json:"phoneme_count"`
	Language     string `json:"language"`
	Backend      string `json:"backend"`
}

// UploadResponse acknowledges a stored recording
type UploadResponse struct {
	Word     string `json:"word"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// HealthResponse reports service status for monitoring
type HealthResponse struct {
	Status         string `json:"status"`
	DataDir        string `json:"data_dir"`
	Participants   int    `json:"participants"`
	Phonemizer     bool   `json:"phonemizer_available"`
	AnalysisMethod string `json:"analysis_method"`
}

// ErrorResponse is the common error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
