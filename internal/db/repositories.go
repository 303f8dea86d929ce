package db

// Repositories provides access to all database repositories
type Repositories struct {
	Courses      *CourseRepository
	Modules      *ModuleRepository
	Interactions *InteractionRepository
	Completions  *CompletionRepository
	Progress     *ProgressRepository
	Stats        *StatsRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Courses:      NewCourseRepository(db),
		Modules:      NewModuleRepository(db),
		Interactions: NewInteractionRepository(db),
		Completions:  NewCompletionRepository(db),
		Progress:     NewProgressRepository(db),
		Stats:        NewStatsRepository(db),
	}
}
