package migrations

import (
	"context"
	"fmt"

	"github.com/terraconstructs/taskapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260301000002, down_20260301000002)
}

// up_20260301000002 creates the tasks table with its owner foreign key.
func up_20260301000002(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating tasks table...")

	q := db.NewCreateTable().
		Model((*models.Task)(nil)).
		IfNotExists()

	// SQLite cannot add constraints after the fact
	if IsSQLite(db) {
		q = q.ForeignKey(`(user_id) REFERENCES users(id) ON DELETE CASCADE`)
	}

	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}

	if IsPostgreSQL(db) {
		_, err := db.ExecContext(ctx, `
			ALTER TABLE tasks
			ADD CONSTRAINT fk_tasks_user_id
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		`)
		if err != nil {
			return fmt.Errorf("failed to add tasks user_id FK: %w", err)
		}
	}

	_, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id)`)
	if err != nil {
		return fmt.Errorf("failed to create tasks user_id index: %w", err)
	}

	fmt.Println(" OK")
	return nil
}

func down_20260301000002(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping tasks table...")

	_, err := db.NewDropTable().
		Model((*models.Task)(nil)).
		IfExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop tasks table: %w", err)
	}

	fmt.Println(" OK")
	return nil
}
