package catalog

import (
	_ "embed"
	"encoding/json"

	"github.com/anjiri1684/learnlingo/models"
	"github.com/pkg/errors"
)

//go:embed fixtures/teachers.json
var fixtureJSON []byte

// Fixtures returns the built-in demo teachers served when the store is unreachable.
func Fixtures() []models.Teacher {
	teachers, err := DecodeTeachers(fixtureJSON)
	if err != nil {
		panic(err)
	}
	return teachers
}

// DecodeTeachers parses a JSON array of teachers; ids may be numbers or strings.
func DecodeTeachers(raw []byte) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := json.Unmarshal(raw, &teachers); err != nil {
		return nil, errors.Wrap(err, "decoding teachers")
	}
	return teachers, nil
}
