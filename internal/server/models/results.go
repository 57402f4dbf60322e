package models

import "time"

// Password strength buckets.
const (
	StrengthWeak       = "weak"
	StrengthMedium     = "medium"
	StrengthStrong     = "strong"
	StrengthVeryStrong = "very-strong"
)

type PasswordAnalysis struct {
	Score              int      `json:"score"`
	Strength           string   `json:"strength"`
	Vulnerabilities    []string `json:"vulnerabilities"`
	Suggestions        []string `json:"suggestions"`
	EstimatedCrackTime string   `json:"crackTime"`
	Entropy            float64  `json:"entropy"`
}

// AnomalyResult is the detection verdict. Message is only set when the model
// is not trained yet, to tell that state apart from a real negative.
type AnomalyResult struct {
	IsAnomaly      bool     `json:"isAnomaly"`
	AnomalyScore   float64  `json:"anomalyScore"`
	Factors        []string `json:"factors,omitempty"`
	Recommendation string   `json:"recommendation"`
	Message        string   `json:"message,omitempty"`
}

type TrainingMetrics struct {
	TotalSamples      int       `json:"totalSamples"`
	AnomaliesDetected int       `json:"anomaliesDetected"`
	AnomalyRate       float64   `json:"anomalyRate"`
	ModelVersion      string    `json:"modelVersion"`
	TrainedAt         time.Time `json:"trainedAt"`
}

type Stats struct {
	ModelTrained          bool   `json:"modelTrained"`
	TrainingDataSize      int    `json:"trainingDataSize"`
	PasswordAnalyzerReady bool   `json:"passwordAnalyzerReady"`
	ModelVersion          string `json:"modelVersion,omitempty"`
	Version               string `json:"version"`
}
