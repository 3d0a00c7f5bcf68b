package model

// ResponseScore is a single scored response without magnitude metadata,
// used by the jailbreak (per-prompt) layout.
type ResponseScore struct {
	Response string `json:"response"`
	Score    string `json:"score"`
}

// PromptResponses groups a jailbreak prompt's responses by steering state.
// The inner maps are keyed by prompt kind ("jailbreak" or "default"); the
// steered map is keyed by magnitude key first, then kind.
type PromptResponses struct {
	Unsteered map[string]ResponseScore            `json:"unsteered"`
	Steered   map[string]map[string]ResponseScore `json:"steered"`
}

// PromptItem is one jailbreak prompt document, written to prompts/<id>.json.
// The raw harmful prompt text is deliberately never carried over.
type PromptItem struct {
	ID           string          `json:"id"`
	Question     string          `json:"question"`
	Persona      string          `json:"persona"`
	HarmCategory string          `json:"harm_category"`
	Responses    PromptResponses `json:"responses"`
}

// MagnitudeResponse is a response produced at a specific steering magnitude.
type MagnitudeResponse struct {
	Response  string  `json:"response"`
	Score     string  `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

// EntryResponses pairs the unsteered response (magnitude 0) with the steered
// responses keyed by magnitude key.
type EntryResponses struct {
	Unsteered *MagnitudeResponse           `json:"unsteered"`
	Steered   map[string]MagnitudeResponse `json:"steered"`
}

// QuestionEntry is one grouped item inside a susceptibility chunk. The ID is
// the composite "<prompt id>_<sample id>" form.
type QuestionEntry struct {
	ID           string         `json:"id"`
	Role         string         `json:"role"`
	Question     string         `json:"question"`
	SystemPrompt string         `json:"system_prompt"`
	PromptID     int            `json:"prompt_id"`
	Responses    EntryResponses `json:"responses"`
}
