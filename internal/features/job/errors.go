package job

import "errors"

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrTitleRequired       = errors.New("job title is required")
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrInvalidJobType      = errors.New("invalid job type")
	ErrInvalidSalaryRange  = errors.New("salary minimum cannot exceed maximum")
	ErrNotJobOwner         = errors.New("job belongs to another company owner")
)
