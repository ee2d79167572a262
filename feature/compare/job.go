package compare

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Job is a YAML file listing comparisons to run in order.
//
//	comparisons:
//	  - a: file:exports/orders_old.csv
//	    b: pg:public.orders
//	    key: [order_id]
//	    string_columns: [price]
//	    sinks: [database]
type Job struct {
	Comparisons []Request `yaml:"comparisons"`
}

// LoadJob reads and validates a job file.
func LoadJob(path string) (*Job, error) {
	if path == "" {
		return nil, errors.New("job path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	return ParseJob(data)
}

// ParseJob decodes and validates job YAML.
func ParseJob(data []byte) (*Job, error) {
	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}

	if len(job.Comparisons) == 0 {
		return nil, errors.New("job must define at least one comparison")
	}
	for i := range job.Comparisons {
		if err := job.Comparisons[i].Validate(); err != nil {
			return nil, fmt.Errorf("comparison %d: %w", i+1, err)
		}
	}
	return &job, nil
}
