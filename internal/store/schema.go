package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	usersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "password_hash", Type: field.TypeString, Default: ""},
		{Name: "token", Type: field.TypeString, Nullable: true, Unique: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	usersTable = &schema.Table{
		Name:       "users",
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	charactersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "tech_stack_id", Type: field.TypeString},
		{Name: "animal", Type: field.TypeString},
		{Name: "level", Type: field.TypeInt, Default: 1},
		{Name: "experience", Type: field.TypeInt, Default: 0},
		{Name: "last_study_date", Type: field.TypeTime, Nullable: true},
		{Name: "total_study_minutes", Type: field.TypeInt, Default: 0},
		{Name: "streak", Type: field.TypeInt, Default: 0},
		{Name: "longest_streak", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	charactersTable = &schema.Table{
		Name:       "characters",
		Columns:    charactersColumns,
		PrimaryKey: []*schema.Column{charactersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "characters_users_characters",
				Columns:    []*schema.Column{charactersColumns[1]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "character_user_id_tech_stack_id",
				Unique:  true,
				Columns: []*schema.Column{charactersColumns[1], charactersColumns[2]},
			},
		},
	}

	characterBadgesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "character_id", Type: field.TypeString},
		{Name: "badge_id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "awarded_at", Type: field.TypeTime},
	}
	characterBadgesTable = &schema.Table{
		Name:       "character_badges",
		Columns:    characterBadgesColumns,
		PrimaryKey: []*schema.Column{characterBadgesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "character_badges_characters_badges",
				Columns:    []*schema.Column{characterBadgesColumns[1]},
				RefColumns: []*schema.Column{charactersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "characterbadge_character_id_badge_id",
				Unique:  true,
				Columns: []*schema.Column{characterBadgesColumns[1], characterBadgesColumns[2]},
			},
		},
	}

	studySessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "character_id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "studied_at", Type: field.TypeTime},
		{Name: "duration_minutes", Type: field.TypeInt},
		{Name: "notes", Type: field.TypeString, Default: ""},
		{Name: "experience_gained", Type: field.TypeInt},
	}
	studySessionsTable = &schema.Table{
		Name:       "study_sessions",
		Columns:    studySessionsColumns,
		PrimaryKey: []*schema.Column{studySessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "study_sessions_characters_sessions",
				Columns:    []*schema.Column{studySessionsColumns[1]},
				RefColumns: []*schema.Column{charactersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "studysession_character_id_studied_at",
				Columns: []*schema.Column{studySessionsColumns[1], studySessionsColumns[3]},
			},
		},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "tech_stack_id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "options", Type: field.TypeJSON},
		{Name: "answer", Type: field.TypeInt},
		{Name: "reward_exp", Type: field.TypeInt},
		{Name: "explanation", Type: field.TypeString, Default: ""},
		{Name: "source", Type: field.TypeString, Default: "seed"},
		{Name: "created_at", Type: field.TypeTime},
	}
	questionsTable = &schema.Table{
		Name:       "questions",
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "question_tech_stack_id_difficulty",
				Columns: []*schema.Column{questionsColumns[1], questionsColumns[4]},
			},
		},
	}

	solvedQuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "character_id", Type: field.TypeString},
		{Name: "tech_stack_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeInt64},
		{Name: "solved_at", Type: field.TypeTime},
	}
	solvedQuestionsTable = &schema.Table{
		Name:       "solved_questions",
		Columns:    solvedQuestionsColumns,
		PrimaryKey: []*schema.Column{solvedQuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "solved_questions_characters_solved",
				Columns:    []*schema.Column{solvedQuestionsColumns[2]},
				RefColumns: []*schema.Column{charactersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "solvedquestion_character_id_question_id",
				Unique:  true,
				Columns: []*schema.Column{solvedQuestionsColumns[2], solvedQuestionsColumns[4]},
			},
			{
				Name:    "solvedquestion_user_id",
				Columns: []*schema.Column{solvedQuestionsColumns[1]},
			},
		},
	}

	wrongAnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "tech_stack_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeInt64},
		{Name: "title", Type: field.TypeString},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "options", Type: field.TypeJSON},
		{Name: "my_answer", Type: field.TypeInt},
		{Name: "correct_answer", Type: field.TypeInt},
		{Name: "reward_exp", Type: field.TypeInt},
		{Name: "recorded_at", Type: field.TypeTime},
	}
	wrongAnswersTable = &schema.Table{
		Name:       "wrong_answers",
		Columns:    wrongAnswersColumns,
		PrimaryKey: []*schema.Column{wrongAnswersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "wrong_answers_users_wrong_answers",
				Columns:    []*schema.Column{wrongAnswersColumns[1]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "wronganswer_user_id_question_id",
				Unique:  true,
				Columns: []*schema.Column{wrongAnswersColumns[1], wrongAnswersColumns[3]},
			},
		},
	}

	settingsColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString},
		{Name: "value", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeTime},
	}
	settingsTable = &schema.Table{
		Name:       "settings",
		Columns:    settingsColumns,
		PrimaryKey: []*schema.Column{settingsColumns[0]},
	}

	llmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    llmRequestsColumns,
		PrimaryKey: []*schema.Column{llmRequestsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequest_purpose",
				Columns: []*schema.Column{llmRequestsColumns[5]},
			},
		},
	}

	tables = []*schema.Table{
		usersTable,
		charactersTable,
		characterBadgesTable,
		studySessionsTable,
		questionsTable,
		solvedQuestionsTable,
		wrongAnswersTable,
		settingsTable,
		llmRequestsTable,
	}
)

func init() {
	charactersTable.ForeignKeys[0].RefTable = usersTable
	characterBadgesTable.ForeignKeys[0].RefTable = charactersTable
	studySessionsTable.ForeignKeys[0].RefTable = charactersTable
	solvedQuestionsTable.ForeignKeys[0].RefTable = charactersTable
	wrongAnswersTable.ForeignKeys[0].RefTable = usersTable
}

// migrate creates or upgrades every table through ent's migration engine.
func migrate(ctx context.Context, db *sql.DB) error {
	drv := entsql.OpenDB(dialect.SQLite, db)
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}
