package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/generation.schema.json
var generationSchemaSource string

var generationSchema = jsonschema.MustCompileString("generation.schema.json", generationSchemaSource)

var fenceReplacer = strings.NewReplacer("```json", "", "```JSON", "", "```", "")

// Outcome tags how an Extraction was produced.
type Outcome int

const (
	// OutcomeFallback means the text could not be reduced to a structural object; the result is the zero value.
	OutcomeFallback Outcome = iota
	// OutcomeParsed means the text held a well-formed generation object.
	OutcomeParsed
)

func (o Outcome) String() string {
	if o == OutcomeParsed {
		return "parsed"
	}
	return "fallback"
}

// Extraction is the tagged result of Sanitize.
type Extraction struct {
	Result  GenerationResult
	Outcome Outcome
	// Err describes why the fallback was taken. It is informational only.
	Err error
}

// Parsed reports whether the model output was well formed.
func (e Extraction) Parsed() bool {
	return e.Outcome == OutcomeParsed
}

// Sanitize extracts a GenerationResult from arbitrary model text. It never fails: malformed input
// yields OutcomeFallback with an empty result.
func Sanitize(text string) Extraction {
	var payload struct {
		Explanation Text                `json:"explanation"`
		Examples    []WorkedExample     `json:"examples"`
		Questions   []GeneratedQuestion `json:"questions"`
	}

	if err := decodeValidated(text, &payload); err != nil {
		return Extraction{Outcome: OutcomeFallback, Err: err}
	}

	return Extraction{
		Result: GenerationResult{
			Explanation: strings.TrimSpace(payload.Explanation.String()),
			Examples:    payload.Examples,
			Questions:   payload.Questions,
		},
		Outcome: OutcomeParsed,
	}
}

// ExtractObject strips code fences and returns the slice between the first '{' and the last '}'.
// When no such pair exists the stripped text is returned unchanged.
func ExtractObject(text string) string {
	clean := strings.TrimSpace(fenceReplacer.Replace(text))

	first := strings.Index(clean, "{")
	last := strings.LastIndex(clean, "}")
	if first != -1 && last > first {
		return clean[first : last+1]
	}

	return clean
}

// DecodeObject extracts the JSON object embedded in model text and decodes it into target.
func DecodeObject(text string, target interface{}) error {
	body := ExtractObject(text)
	if body == "" {
		return fmt.Errorf("no content to decode")
	}

	if err := json.Unmarshal([]byte(body), target); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}

	return nil
}

func decodeValidated(text string, target interface{}) error {
	body := ExtractObject(text)

	var raw interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}

	if err := generationSchema.Validate(raw); err != nil {
		return fmt.Errorf("model output violates schema: %w", err)
	}

	if err := json.Unmarshal([]byte(body), target); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}

	return nil
}
