package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const maxTemperature = 2.0

// NormalizeRequest validates req and returns a copy with defaults applied:
// a generated ID, general task type and medium priority.
func NormalizeRequest(req *Request) (*Request, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", ErrInvalidRequest)
	}

	if req.Temperature < 0 || req.Temperature > maxTemperature {
		return nil, fmt.Errorf("%w: temperature must be between 0 and %.0f", ErrInvalidRequest, maxTemperature)
	}

	if req.MaxTokens < 0 {
		return nil, fmt.Errorf("%w: max tokens cannot be negative", ErrInvalidRequest)
	}

	taskType, err := ParseTaskType(string(req.TaskType))
	if err != nil {
		return nil, err
	}

	priority, err := ParsePriority(string(req.Priority))
	if err != nil {
		return nil, err
	}

	normalized := *req
	normalized.TaskType = taskType
	normalized.Priority = priority
	if normalized.ID == "" {
		normalized.ID = uuid.New().String()
	}

	return &normalized, nil
}

// IsInvalidRequest reports whether err is a validation error.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}
