package memstore

import (
	"fmt"
	"os"
	"strings"
	"time"

	"editdesk-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML fixture format for demo data.
type Seed struct {
	Users    []SeedUser    `yaml:"users"`
	Projects []SeedProject `yaml:"projects"`
}

type SeedUser struct {
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	FullName string      `yaml:"full_name"`
	Role     models.Role `yaml:"role"`
}

// SeedProject refers to its client and editor by email.
type SeedProject struct {
	Title          string               `yaml:"title"`
	Description    string               `yaml:"description"`
	EditingStyle   string               `yaml:"editing_style"`
	Platforms      []string             `yaml:"platforms"`
	AspectRatio    string               `yaml:"aspect_ratio"`
	Client         string               `yaml:"client"`
	Editor         string               `yaml:"editor"`
	Status         models.ProjectStatus `yaml:"status"`
	Priority       models.Priority      `yaml:"priority"`
	DueDate        time.Time            `yaml:"due_date"`
	ReferenceLinks []string             `yaml:"reference_links"`
	NotesForEditor string               `yaml:"notes_for_editor"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Apply loads seed users (confirmed, with profiles) and projects into the store.
func (s *Store) Apply(seed *Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]string, len(seed.Users))
	for _, u := range seed.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || u.Password == "" {
			return fmt.Errorf("seed user needs an email and a password")
		}
		if !u.Role.Valid() {
			return fmt.Errorf("seed user %s has unknown role %q", email, u.Role)
		}
		if _, ok := s.identities[email]; ok {
			return fmt.Errorf("seed user %s already exists", email)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", email, err)
		}

		id := &identity{
			Identity: models.Identity{
				ID:       uuid.New().String(),
				Email:    email,
				Metadata: map[string]interface{}{"full_name": u.FullName, "role": string(u.Role)},
			},
			passwordHash: hash,
			confirmed:    true,
		}
		s.identities[email] = id
		s.insertProfileLocked(models.Profile{ID: id.ID, Email: email, FullName: u.FullName, Role: u.Role})
		ids[email] = id.ID
	}

	for _, sp := range seed.Projects {
		clientID, ok := ids[strings.ToLower(sp.Client)]
		if !ok {
			return fmt.Errorf("seed project %q: unknown client %s", sp.Title, sp.Client)
		}
		p := models.Project{
			ID:             uuid.New().String(),
			ClientID:       clientID,
			Title:          sp.Title,
			Description:    sp.Description,
			EditingStyle:   sp.EditingStyle,
			Platforms:      sp.Platforms,
			AspectRatio:    sp.AspectRatio,
			Status:         sp.Status,
			Priority:       sp.Priority,
			DueDate:        sp.DueDate,
			ReferenceLinks: sp.ReferenceLinks,
		}
		if p.Status == "" {
			p.Status = models.StatusNew
		}
		if p.Priority == "" {
			p.Priority = models.PriorityNormal
		}
		if !p.Status.Valid() || !p.Priority.Valid() {
			return fmt.Errorf("seed project %q: invalid status or priority", sp.Title)
		}
		if sp.Editor != "" {
			editorID, ok := ids[strings.ToLower(sp.Editor)]
			if !ok {
				return fmt.Errorf("seed project %q: unknown editor %s", sp.Title, sp.Editor)
			}
			p.EditorID = &editorID
		}
		if p.Status.RequiresEditor() != p.HasEditor() && !p.Status.Terminal() && p.Status != models.StatusOnHold {
			return fmt.Errorf("seed project %q: status %s does not match its editor", sp.Title, p.Status)
		}
		if sp.NotesForEditor != "" {
			notes := sp.NotesForEditor
			p.NotesForEditor = &notes
		}
		now := s.stamp()
		p.CreatedAt, p.UpdatedAt = now, now
		s.projects[p.ID] = cloneProject(p)
	}

	s.logger.Info("seed applied")
	return nil
}
