// Package seed resets the store and loads demo owners and risk models.
package seed

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	"github.com/Josh-IE/risk-management/internal/infrastructure/persistence"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the document the seeder loads
type Fixtures struct {
	Owners  []OwnerFixture  `yaml:"owners"`
	Schemas []SchemaFixture `yaml:"schemas"`
}

// OwnerFixture names one owner
type OwnerFixture struct {
	Name string `yaml:"name"`
}

// SchemaFixture is a risk model whose owner is referenced by name
type SchemaFixture struct {
	Owner       string         `yaml:"owner"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	SuccessMsg  string         `yaml:"success_msg"`
	Button      string         `yaml:"button"`
	Activated   *bool          `yaml:"activated"`
	Fields      []FieldFixture `yaml:"fields"`
}

// FieldFixture is one field of a SchemaFixture
type FieldFixture struct {
	Name         string   `yaml:"name"`
	FieldType    string   `yaml:"field_type"`
	DefaultValue string   `yaml:"default"`
	RegexPattern string   `yaml:"regex_pattern"`
	MinLength    *int     `yaml:"min_length"`
	MaxLength    *int     `yaml:"max_length"`
	Choices      []string `yaml:"choices"`
	Required     *bool    `yaml:"required"`
	HelpText     string   `yaml:"help_text"`
	Order        *int     `yaml:"order"`
	Unique       *bool    `yaml:"unique"`
}

// SchemaCreator stores a validated risk model
type SchemaCreator interface {
	Create(ctx context.Context, in *models.SchemaInput) (*models.Schema, error)
}

// Summary counts what a run created
type Summary struct {
	Owners  int
	Schemas int
	Fields  int
}

// DefaultFixtures returns the embedded demo document
func DefaultFixtures() []byte {
	return defaultFixtures
}

// Parse decodes a fixtures document. Unknown keys are rejected.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// Seeder wipes every table and loads fixtures through the schema service so
// seeded models pass the same validation as API input
type Seeder struct {
	repos   *persistence.Repositories
	schemas SchemaCreator
}

// NewSeeder creates a new Seeder
func NewSeeder(repos *persistence.Repositories, schemas SchemaCreator) *Seeder {
	return &Seeder{repos: repos, schemas: schemas}
}

// Run truncates the store, then creates the fixture owners and schemas
func (s *Seeder) Run(ctx context.Context, f *Fixtures) (*Summary, error) {
	log.Println("🧹 Truncating tables")
	owners := make(map[string]int64, len(f.Owners))

	err := s.repos.Tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.repos.Truncate(ctx, tx); err != nil {
			return err
		}
		for _, of := range f.Owners {
			owner, err := s.repos.Owners.Create(ctx, tx, of.Name)
			if err != nil {
				return fmt.Errorf("owner %q: %w", of.Name, err)
			}
			owners[owner.Name] = owner.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := &Summary{Owners: len(owners)}
	for _, sf := range f.Schemas {
		in, err := sf.input(owners)
		if err != nil {
			return summary, err
		}
		schema, err := s.schemas.Create(ctx, in)
		if err != nil {
			return summary, fmt.Errorf("risk model %q: %w", sf.Name, err)
		}
		summary.Schemas++
		summary.Fields += len(schema.Fields)
	}

	log.Printf("🌱 Seeded %d owners, %d risk models, %d fields", summary.Owners, summary.Schemas, summary.Fields)
	return summary, nil
}

func (sf SchemaFixture) input(owners map[string]int64) (*models.SchemaInput, error) {
	in := &models.SchemaInput{
		Name:        sf.Name,
		Description: sf.Description,
		SuccessMsg:  sf.SuccessMsg,
		Button:      sf.Button,
		Activated:   sf.Activated,
		Fields:      make([]models.FieldInput, 0, len(sf.Fields)),
	}
	if sf.Owner != "" {
		id, ok := owners[sf.Owner]
		if !ok {
			return nil, fmt.Errorf("risk model %q: unknown owner %q", sf.Name, sf.Owner)
		}
		in.OwnerID = &id
	}
	for _, ff := range sf.Fields {
		in.Fields = append(in.Fields, models.FieldInput{
			Name:         ff.Name,
			FieldType:    ff.FieldType,
			DefaultValue: ff.DefaultValue,
			RegexPattern: ff.RegexPattern,
			MinLength:    ff.MinLength,
			MaxLength:    ff.MaxLength,
			Choices:      ff.Choices,
			Required:     ff.Required,
			HelpText:     ff.HelpText,
			Order:        ff.Order,
			Unique:       ff.Unique,
		})
	}
	return in, nil
}
