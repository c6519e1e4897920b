package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/revise/internal/mastery"
)

// recordSet is one student's records in one course, as read by import.
type recordSet struct {
	StudentID string                  `json:"student_id"`
	CourseID  string                  `json:"course_id"`
	Records   []mastery.OutcomeRecord `json:"records"`
}

var importCmd = &cobra.Command{
	Use:   "import <file.json|->",
	Short: "Load mastery records into the configured store",
	Long: `Reads a JSON array of {"student_id", "course_id", "records": [...]} objects
and upserts every record. Records without last_practiced_at are stored as not
yet practiced. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, err := readRecordSets(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		replace, _ := cmd.Flags().GetBool("replace")

		return withStore(cmd, func(rt *runtime, repo recordStore) error {
			ctx := cmd.Context()
			total := 0
			for _, set := range sets {
				if replace {
					if err := repo.DeleteCourse(ctx, set.StudentID, set.CourseID); err != nil {
						return fmt.Errorf("clear %s/%s: %w", set.StudentID, set.CourseID, err)
					}
				}
				if err := repo.Upsert(ctx, set.StudentID, set.CourseID, set.Records); err != nil {
					return fmt.Errorf("import %s/%s: %w", set.StudentID, set.CourseID, err)
				}
				rt.log.Debug("imported records",
					zap.String("student_id", set.StudentID),
					zap.String("course_id", set.CourseID),
					zap.Int("records", len(set.Records)),
				)
				total += len(set.Records)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records in %d sets.\n", total, len(sets))
			return nil
		})
	},
}

func init() {
	importCmd.Flags().Bool("replace", false, "Delete existing records of each student and course before importing")
}

// recordSetsSchema describes the import file. Uniqueness of outcome IDs
// within a set is checked after decoding.
const recordSetsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["student_id", "course_id", "records"],
    "properties": {
      "student_id": {"type": "string", "minLength": 1},
      "course_id": {"type": "string", "minLength": 1},
      "records": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["outcome_id", "mastery_score"],
          "properties": {
            "outcome_id": {"type": "string", "minLength": 1},
            "mastery_score": {"type": "number", "minimum": 0, "maximum": 1},
            "last_practiced_at": {
              "oneOf": [
                {"type": "string", "format": "date-time"},
                {"type": "null"}
              ]
            },
            "review_count": {"type": "integer", "minimum": 0}
          }
        }
      }
    }
  }
}`

const recordSetsSchemaURL = "schema://record-sets.json"

// compiledRecordSetsSchema compiles recordSetsSchema once.
var compiledRecordSetsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var def any
	if err := json.Unmarshal([]byte(recordSetsSchema), &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(recordSetsSchemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(recordSetsSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return compiled, nil
})

func readRecordSets(stdin io.Reader, path string) ([]recordSet, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	// Parse JSON first.
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	schema, err := compiledRecordSetsSchema()
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var sets []recordSet
	if err := json.Unmarshal(raw, &sets); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	for i, set := range sets {
		seen := make(map[string]bool, len(set.Records))
		for _, rec := range set.Records {
			if seen[rec.OutcomeID] {
				return nil, fmt.Errorf("set %d: duplicate outcome %q", i, rec.OutcomeID)
			}
			seen[rec.OutcomeID] = true
		}
	}
	return sets, nil
}
