package resume

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

//go:embed schemas/job_history.json
var jobHistorySchemaSource string

//go:embed schemas/attributes.json
var attributesSchemaSource string

var (
	jobHistorySchema = mustSchema("job_history", jobHistorySchemaSource)
	attributesSchema = mustSchema("attributes", attributesSchemaSource)

	fencedBlockRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")
	itemSplitRe   = regexp.MustCompile(`[,;\n]+`)
)

func mustSchema(name, src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return schema
}

// strategy is a single attempt at interpreting a raw service answer.
// ok=false hands the answer to the next strategy.
type strategy[T any] struct {
	name  string
	parse func(raw string) (T, bool)
}

// parseChain runs strategies in order and returns the first success, or
// fallback() when none succeeds. A panicking strategy counts as a failure.
func parseChain[T any](log *zap.Logger, raw string, strategies []strategy[T], fallback func() T) T {
	for _, s := range strategies {
		if v, ok := tryStrategy(s, raw); ok {
			log.Debug("parsed service answer", zap.String("strategy", s.name))
			return v
		}
	}
	log.Debug("no parse strategy matched, using fallback")
	return fallback()
}

func tryStrategy[T any](s strategy[T], raw string) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return s.parse(raw)
}

// fencedBlock returns the contents of the first ``` delimited block.
func fencedBlock(raw string) (string, bool) {
	m := fencedBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// fenced adapts a structured parser to operate on the fenced block of an answer.
func fenced[T any](parse func(string) (T, bool)) func(string) (T, bool) {
	return func(raw string) (T, bool) {
		block, ok := fencedBlock(raw)
		if !ok {
			var zero T
			return zero, false
		}
		return parse(block)
	}
}

// decodeValidated unmarshals text, checks it against schema and returns the generic document.
func decodeValidated(text string, schema *gojsonschema.Schema) (any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, false
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil || !result.Valid() {
		return nil, false
	}

	return doc, true
}

type rawJobTitle struct {
	Title     string `mapstructure:"title"`
	Current   bool   `mapstructure:"current"`
	IsCurrent *bool  `mapstructure:"is_current"`
	Industry  string `mapstructure:"industry"`
	Level     string `mapstructure:"level"`
}

// parseJobHistoryJSON decodes a JSON array of job title objects.
func parseJobHistoryJSON(text string) ([]JobTitleRecord, bool) {
	doc, ok := decodeValidated(text, jobHistorySchema)
	if !ok {
		return nil, false
	}

	var raws []rawJobTitle
	if err := weakDecode(doc, &raws); err != nil {
		return nil, false
	}

	records := make([]JobTitleRecord, 0, len(raws))
	for _, r := range raws {
		current := r.Current
		if r.IsCurrent != nil {
			current = *r.IsCurrent
		}
		records = append(records, JobTitleRecord{
			Title:     strings.TrimSpace(r.Title),
			IsCurrent: current,
			Industry:  strings.TrimSpace(r.Industry),
			Level:     ParseLevel(r.Level),
		})
	}

	return records, true
}

// parseAttributesJSON decodes a JSON object keyed by category names.
func parseAttributesJSON(text string) (Attributes, bool) {
	doc, ok := decodeValidated(text, attributesSchema)
	if !ok {
		return nil, false
	}

	var raw map[string][]string
	if err := weakDecode(doc, &raw); err != nil {
		return nil, false
	}

	attrs := NewAttributes()
	matched := false
	for key, values := range raw {
		category, known := categoryFor(key)
		if !known {
			continue
		}
		attrs[category] = cleanItems(values)
		matched = true
	}

	// An object without a single known category is not an answer.
	return attrs, matched
}

// parseAttributesText locates each category label in free text and splits
// the lines that follow it into items. It always succeeds.
func parseAttributesText(raw string) (Attributes, bool) {
	attrs := NewAttributes()
	for _, c := range Categories {
		re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(string(c)) + `[:\s]+(.*?)(?:\n\n|\n[A-Z]|$)`)
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		attrs[c] = cleanItems(itemSplitRe.Split(strings.TrimSpace(m[1]), -1))
	}
	return attrs, true
}

// categoryFor matches keys like "professional_skills" or "Related job titles".
func categoryFor(key string) (Category, bool) {
	normalized := normalizeKey(key)
	for _, c := range Categories {
		if normalizeKey(string(c)) == normalized {
			return c, true
		}
	}
	return "", false
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func cleanItems(values []string) []string {
	items := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(v), "-•*"))
		if v != "" {
			items = append(items, v)
		}
	}
	return items
}

func weakDecode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       boolHook,
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func boolHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Bool {
		return data, nil
	}
	return coerceBool(data), nil
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes" || lower == "current"
	case float64:
		return val != 0
	default:
		return false
	}
}
