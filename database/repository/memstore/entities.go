package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"ctrlroom/database/repository"
	fileRepo "ctrlroom/database/repository/files"
	"ctrlroom/models"
)

// Engineers implements engineerRepo.EngineerRepository.
type Engineers struct {
	s    *Store
	data map[string]models.Engineer
}

func (r *Engineers) GetByID(_ context.Context, id string) (*models.Engineer, error) {
	if err := r.s.enter(OpEngineerGet); err != nil {
		return nil, err
	}
	defer r.s.leave()

	e, ok := r.data[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *Engineers) GetByUserID(_ context.Context, userID string) (*models.Engineer, error) {
	if err := r.s.enter(OpEngineerGet); err != nil {
		return nil, err
	}
	defer r.s.leave()

	for _, e := range r.data {
		if e.UserID != "" && e.UserID == userID {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Engineers) List(_ context.Context) ([]models.Engineer, error) {
	if err := r.s.enter(OpEngineerList); err != nil {
		return nil, err
	}
	defer r.s.leave()

	out := make([]models.Engineer, 0, len(r.data))
	for _, e := range r.data {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Engineers) Create(_ context.Context, e *models.Engineer) error {
	if err := r.s.enter(OpEngineerWrite); err != nil {
		return err
	}
	defer r.s.leave()

	if _, ok := r.data[e.ID]; ok {
		return fmt.Errorf("engineer %s: %w", e.ID, repository.ErrDuplicate)
	}
	r.data[e.ID] = *e
	return nil
}

func (r *Engineers) Update(_ context.Context, e *models.Engineer) error {
	if err := r.s.enter(OpEngineerWrite); err != nil {
		return err
	}
	defer r.s.leave()

	if _, ok := r.data[e.ID]; !ok {
		return repository.ErrNotFound
	}
	r.data[e.ID] = *e
	return nil
}

// Users implements userRepo.UserRepository.
type Users struct {
	s    *Store
	data map[string]models.User
}

func (r *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	if err := r.s.enter(OpUserGet); err != nil {
		return nil, err
	}
	defer r.s.leave()

	u, ok := r.data[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if err := r.s.enter(OpUserGet); err != nil {
		return nil, err
	}
	defer r.s.leave()

	for _, u := range r.data {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) Create(_ context.Context, u *models.User) error {
	if err := r.s.enter(OpUserWrite); err != nil {
		return err
	}
	defer r.s.leave()

	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.data {
		if existing.ID == u.ID || existing.Email == u.Email {
			return fmt.Errorf("user %s: %w", u.Email, repository.ErrDuplicate)
		}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.data[u.ID] = *u
	return nil
}

func (r *Users) SetFCMToken(_ context.Context, id, token string) error {
	if err := r.s.enter(OpUserWrite); err != nil {
		return err
	}
	defer r.s.leave()

	u, ok := r.data[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FCMToken = token
	u.UpdatedAt = time.Now().UTC()
	r.data[id] = u
	return nil
}

func (r *Users) SetRole(_ context.Context, id string, role models.Role) error {
	if err := r.s.enter(OpUserWrite); err != nil {
		return err
	}
	defer r.s.leave()

	u, ok := r.data[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.data[id] = u
	return nil
}

// Files implements fileRepo.FileRepository.
type Files struct {
	s    *Store
	data map[string]models.SessionFile
}

func (r *Files) Create(_ context.Context, f *models.SessionFile) error {
	if err := r.s.enter(OpFileWrite); err != nil {
		return err
	}
	defer r.s.leave()

	r.data[f.ID] = *f
	return nil
}

func (r *Files) GetByID(_ context.Context, id string) (*models.SessionFile, error) {
	if err := r.s.enter(OpFileRead); err != nil {
		return nil, err
	}
	defer r.s.leave()

	f, ok := r.data[id]
	if !ok || f.Deleted {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (r *Files) List(_ context.Context, filter fileRepo.Filter) ([]models.SessionFile, error) {
	if err := r.s.enter(OpFileRead); err != nil {
		return nil, err
	}
	defer r.s.leave()

	out := []models.SessionFile{}
	for _, f := range r.data {
		if f.Deleted {
			continue
		}
		if filter.SessionID != "" && f.SessionID != filter.SessionID {
			continue
		}
		if filter.UserID != "" && f.UserID != filter.UserID {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Files) SoftDelete(_ context.Context, id string, at time.Time) error {
	if err := r.s.enter(OpFileWrite); err != nil {
		return err
	}
	defer r.s.leave()

	f, ok := r.data[id]
	if !ok || f.Deleted {
		return repository.ErrNotFound
	}
	f.Deleted = true
	f.DeletedAt = &at
	r.data[id] = f
	return nil
}

// Studio implements studioRepo.StudioRepository.
type Studio struct {
	s         *Store
	settings  *models.StudioSettings
	resources map[string]models.StudioResource
}

func (r *Studio) GetSettings(_ context.Context) (*models.StudioSettings, error) {
	if err := r.s.enter(OpStudioRead); err != nil {
		return nil, err
	}
	defer r.s.leave()

	if r.settings == nil {
		return nil, repository.ErrNotFound
	}
	out := *r.settings
	out.DaysOpen = slices.Clone(r.settings.DaysOpen)
	return &out, nil
}

func (r *Studio) SaveSettings(_ context.Context, settings *models.StudioSettings) error {
	if err := r.s.enter(OpStudioWrite); err != nil {
		return err
	}
	defer r.s.leave()

	stored := *settings
	stored.DaysOpen = slices.Clone(settings.DaysOpen)
	r.settings = &stored
	return nil
}

func (r *Studio) ListResources(_ context.Context) ([]models.StudioResource, error) {
	if err := r.s.enter(OpStudioRead); err != nil {
		return nil, err
	}
	defer r.s.leave()

	out := make([]models.StudioResource, 0, len(r.resources))
	for _, res := range r.resources {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *Studio) CreateResource(_ context.Context, res *models.StudioResource) error {
	if err := r.s.enter(OpStudioWrite); err != nil {
		return err
	}
	defer r.s.leave()

	r.resources[res.ID] = *res
	return nil
}

func (r *Studio) UpdateResourceStatus(_ context.Context, id string, status models.ResourceStatus, at time.Time) (*models.StudioResource, error) {
	if err := r.s.enter(OpStudioWrite); err != nil {
		return nil, err
	}
	defer r.s.leave()

	res, ok := r.resources[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res.Status = status
	if status == models.ResourceMaintenance {
		res.LastMaintenance = &at
	}
	r.resources[id] = res
	return &res, nil
}
