package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

// fixtureSchema is unified with every CUE fixture. Definitions are closed,
// so unknown fields are rejected just like the YAML/JSON decoders do.
const fixtureSchema = `
#Media: {
	url:   string & !=""
	kind?: "photo" | "video"
}

#Record: {
	id:        string & !=""
	name:      string | *""
	age?:      int & >=0 & <=150
	zodiac?:   string
	location?: string
	height?:   int & >=0 & <=300
	media?: [...#Media]
}

records: [...#Record]
`

// Fixture is the on-disk shape shared by all fixture formats.
type Fixture struct {
	Records []Record `json:"records" yaml:"records"`
}

// LoadFixture reads records from a .yaml/.yml, .json or .cue file.
// Records are normalised and validated as a deck (unique ids).
func LoadFixture(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var recs []Record
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		recs, err = decodeYAML(data)
	case ".json":
		recs, err = decodeJSON(data)
	case ".cue":
		recs, err = decodeCUE(path, data)
	default:
		return nil, fmt.Errorf("unsupported fixture extension %q (want .yaml, .json or .cue)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}

	for i := range recs {
		recs[i] = recs[i].Normalized()
	}
	if err := ValidateDeck(recs); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return recs, nil
}

func decodeYAML(data []byte) ([]Record, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return f.Records, nil
}

func decodeJSON(data []byte) ([]Record, error) {
	var f Fixture
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return f.Records, nil
}

func decodeCUE(path string, data []byte) ([]Record, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(fixtureSchema, cue.Filename("record_schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling fixture schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling CUE: %s", cueerrors.Details(err, nil))
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating CUE: %s", cueerrors.Details(err, nil))
	}

	var f Fixture
	if err := unified.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding CUE: %w", err)
	}
	return f.Records, nil
}
