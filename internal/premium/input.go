// Package premium holds the insurance premium domain: the input record,
// its feature encodings and the insight derived from a prediction.
package premium

import (
	"math"
	"strings"
)

// Input domain bounds
const (
	MinAge      = 18
	MaxAge      = 100
	MinBMI      = 10.0
	MaxBMI      = 50.0
	MinChildren = 0
	MaxChildren = 5
)

// Sex is the policy holder's sex
type Sex int

const (
	SexMale Sex = iota + 1
	SexFemale
)

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "male"
	case SexFemale:
		return "female"
	}
	return "unknown"
}

// Valid reports whether s is one of the declared values
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// ParseSex parses "male" or "female"
func ParseSex(raw string) (Sex, error) {
	switch normalize(raw) {
	case "male":
		return SexMale, nil
	case "female":
		return SexFemale, nil
	}
	return 0, invalidField("sex", raw, "must be male or female")
}

// Smoker is the policy holder's smoking status
type Smoker int

const (
	SmokerNo Smoker = iota + 1
	SmokerYes
)

func (s Smoker) String() string {
	switch s {
	case SmokerNo:
		return "no"
	case SmokerYes:
		return "yes"
	}
	return "unknown"
}

// Valid reports whether s is one of the declared values
func (s Smoker) Valid() bool {
	return s == SmokerNo || s == SmokerYes
}

// ParseSmoker parses "yes" or "no"
func ParseSmoker(raw string) (Smoker, error) {
	switch normalize(raw) {
	case "no":
		return SmokerNo, nil
	case "yes":
		return SmokerYes, nil
	}
	return 0, invalidField("smoker", raw, "must be yes or no")
}

// Region is the residential region. Declaration order matches the
// ordinal codes used by the legacy encoding.
type Region int

const (
	RegionNortheast Region = iota + 1
	RegionNorthwest
	RegionSoutheast
	RegionSouthwest
)

// Regions lists every region in declaration order
var Regions = []Region{RegionNortheast, RegionNorthwest, RegionSoutheast, RegionSouthwest}

func (r Region) String() string {
	switch r {
	case RegionNortheast:
		return "northeast"
	case RegionNorthwest:
		return "northwest"
	case RegionSoutheast:
		return "southeast"
	case RegionSouthwest:
		return "southwest"
	}
	return "unknown"
}

// Valid reports whether r is one of the declared values
func (r Region) Valid() bool {
	return r >= RegionNortheast && r <= RegionSouthwest
}

// ParseRegion parses one of the four region names
func ParseRegion(raw string) (Region, error) {
	name := normalize(raw)
	for _, r := range Regions {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, invalidField("region", raw, "must be northeast, northwest, southeast or southwest")
}

// Input is one submission of the estimate form
type Input struct {
	Age      int
	Sex      Sex
	BMI      float64
	Children int
	Smoker   Smoker
	Region   Region
}

// Validate checks every field against its domain. The form widgets
// enforce the same ranges, but any other entry point must call this.
func (in Input) Validate() error {
	if in.Age < MinAge || in.Age > MaxAge {
		return invalidField("age", in.Age, "must be between 18 and 100")
	}
	if !in.Sex.Valid() {
		return invalidField("sex", in.Sex, "must be male or female")
	}
	if math.IsNaN(in.BMI) || in.BMI < MinBMI || in.BMI > MaxBMI {
		return invalidField("bmi", in.BMI, "must be between 10.0 and 50.0")
	}
	if in.Children < MinChildren || in.Children > MaxChildren {
		return invalidField("children", in.Children, "must be between 0 and 5")
	}
	if !in.Smoker.Valid() {
		return invalidField("smoker", in.Smoker, "must be yes or no")
	}
	if !in.Region.Valid() {
		return invalidField("region", in.Region, "must be northeast, northwest, southeast or southwest")
	}
	return nil
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
