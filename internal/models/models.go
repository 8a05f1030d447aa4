package models

// Chunk is a bounded-size text segment fed individually to speech synthesis.
// Index is the join key for transcription and difference alignment.
type Chunk struct {
	Content string
	Index   int
}

// DifferenceRecord is a flagged mismatch between a source sentence and the
// best-matching sentence of the transcribed audio for the same chunk.
type DifferenceRecord struct {
	ChunkIndex  int
	Original    string
	Transcribed string
	Ratio       float64
}

// SpokenDifference is one entry of the audio-review analysis response.
type SpokenDifference struct {
	Original string `json:"original"`
	Spoken   string `json:"spoken"`
	Type     string `json:"type"` // misread, skipped, added
	Note     string `json:"note"`
}

// Rejection records a correction proposal refused by the validation gate.
type Rejection struct {
	Surface string
	Reading string
	Reason  string
}
