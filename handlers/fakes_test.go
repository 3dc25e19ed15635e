package handlers_test

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"taskdeck/models"
	"taskdeck/utils"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memUserStore is an in-memory stand-in for the Postgres user store.
type memUserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]models.User{}}
}

func (s *memUserStore) Create(ctx context.Context, username, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return models.User{}, utils.ErrUsernameTaken
	}
	s.nextID++
	user := models.User{ID: s.nextID, Username: username, PasswordHash: passwordHash}
	s.users[username] = user
	return user, nil
}

func (s *memUserStore) ByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[username]
	if !exists {
		return models.User{}, utils.ErrNotFound
	}
	return user, nil
}

func (s *memUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// memTaskStore mirrors the Postgres task store's partial-update and
// delete-missing semantics.
type memTaskStore struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]models.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: map[int]models.Task{}}
}

func (s *memTaskStore) Create(ctx context.Context, ownerID int, title string, description *string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	task := models.Task{ID: s.nextID, Title: title, Description: description, OwnerID: ownerID}
	s.tasks[task.ID] = task
	return task, nil
}

func (s *memTaskStore) ByID(ctx context.Context, id int) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, exists := s.tasks[id]
	if !exists {
		return models.Task{}, utils.ErrNotFound
	}
	return task, nil
}

func (s *memTaskStore) ForOwner(ctx context.Context, ownerID int) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := []models.Task{}
	for _, task := range s.tasks {
		if task.OwnerID == ownerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (s *memTaskStore) All(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := []models.Task{}
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *memTaskStore) Update(ctx context.Context, id int, patch models.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, exists := s.tasks[id]
	if !exists {
		return models.Task{}, utils.ErrNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	s.tasks[id] = task
	return task, nil
}

func (s *memTaskStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[id]; !exists {
		return utils.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}
