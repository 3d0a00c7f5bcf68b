package model

// ChunkRef locates one item inside a chunk list: the chunk's index within its
// manifest list and the item's offset within that chunk. It lets the viewer
// fetch any item with a single chunk load instead of scanning.
type ChunkRef struct {
	Chunk  int `json:"chunk"`
	Offset int `json:"offset"`
}

// QuestionManifest lists the chunk names and item locations for one question.
// Chunk indices in the item maps refer to the corresponding chunk-name list.
type QuestionManifest struct {
	RolePromptedChunks []string            `json:"role_prompted_chunks"`
	DefaultChunks      []string            `json:"default_chunks"`
	RolePromptedItems  map[string]ChunkRef `json:"role_prompted_items"`
	DefaultItems       map[string]ChunkRef `json:"default_items"`
}

// SusceptibilityIndex is the per-model index.json for the chunked layout.
type SusceptibilityIndex struct {
	Model          string                      `json:"model"`
	Eval           string                      `json:"eval"`
	TotalQuestions int                         `json:"total_questions"`
	Magnitudes     []float64                   `json:"magnitudes"`
	Questions      map[string]QuestionManifest `json:"questions"`
}

// JailbreakIndex is the per-model index.json for the per-prompt layout.
type JailbreakIndex struct {
	Model          string    `json:"model"`
	Eval           string    `json:"eval"`
	PromptIDs      []string  `json:"prompt_ids"`
	Magnitudes     []float64 `json:"magnitudes"`
	HarmCategories []string  `json:"harm_categories"`
	TotalPrompts   int       `json:"total_prompts"`
}
