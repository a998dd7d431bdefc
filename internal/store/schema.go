package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const textSize = 2147483647

var (
	coursesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "name", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	coursesTable = &schema.Table{
		Name:       "courses",
		Columns:    coursesColumns,
		PrimaryKey: []*schema.Column{coursesColumns[0]},
	}

	chunksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "course_id", Type: field.TypeString, Size: 36},
		{Name: "ordinal", Type: field.TypeInt},
		{Name: "text", Type: field.TypeString, Size: textSize},
		{Name: "source_name", Type: field.TypeString, Default: ""},
		{Name: "embedding", Type: field.TypeString, Size: textSize, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	chunksTable = &schema.Table{
		Name:       "chunks",
		Columns:    chunksColumns,
		PrimaryKey: []*schema.Column{chunksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "chunks_courses_chunks",
				Columns:    []*schema.Column{chunksColumns[1]},
				RefColumns: []*schema.Column{coursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "chunk_course_id_ordinal", Unique: true, Columns: []*schema.Column{chunksColumns[1], chunksColumns[2]}},
		},
	}

	conceptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "course_id", Type: field.TypeString, Size: 36},
		{Name: "name", Type: field.TypeString, Size: 500},
		{Name: "description", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "importance", Type: field.TypeFloat64, Default: 0.5},
	}
	conceptsTable = &schema.Table{
		Name:       "concepts",
		Columns:    conceptsColumns,
		PrimaryKey: []*schema.Column{conceptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "concepts_courses_concepts",
				Columns:    []*schema.Column{conceptsColumns[1]},
				RefColumns: []*schema.Column{coursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "concept_course_id_name", Unique: true, Columns: []*schema.Column{conceptsColumns[1], conceptsColumns[2]}},
		},
	}

	conceptEdgesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "source_id", Type: field.TypeString, Size: 36},
		{Name: "target_id", Type: field.TypeString, Size: 36},
		{Name: "relation", Type: field.TypeEnum, Enums: []string{"prerequisite", "related", "part_of"}},
		{Name: "confidence", Type: field.TypeFloat64, Default: 0.7},
	}
	conceptEdgesTable = &schema.Table{
		Name:       "concept_edges",
		Columns:    conceptEdgesColumns,
		PrimaryKey: []*schema.Column{conceptEdgesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "concept_edges_concepts_edges_out",
				Columns:    []*schema.Column{conceptEdgesColumns[1]},
				RefColumns: []*schema.Column{conceptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "concept_edges_concepts_edges_in",
				Columns:    []*schema.Column{conceptEdgesColumns[2]},
				RefColumns: []*schema.Column{conceptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "conceptedge_source_id_target_id_relation", Unique: true, Columns: []*schema.Column{conceptEdgesColumns[1], conceptEdgesColumns[2], conceptEdgesColumns[3]}},
		},
	}

	quizQuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "course_id", Type: field.TypeString, Size: 36},
		{Name: "concept_id", Type: field.TypeString, Size: 36, Nullable: true},
		{Name: "question_type", Type: field.TypeString, Size: 20, Default: "mcq"},
		{Name: "question_text", Type: field.TypeString, Size: textSize},
		{Name: "options", Type: field.TypeString, Size: textSize},
		{Name: "correct_answer", Type: field.TypeString, Size: 500},
		{Name: "explanation", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "difficulty", Type: field.TypeString, Size: 20, Default: "medium"},
		{Name: "bloom_level", Type: field.TypeString, Size: 20, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	quizQuestionsTable = &schema.Table{
		Name:       "quiz_questions",
		Columns:    quizQuestionsColumns,
		PrimaryKey: []*schema.Column{quizQuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_questions_courses_questions",
				Columns:    []*schema.Column{quizQuestionsColumns[1]},
				RefColumns: []*schema.Column{coursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "quiz_questions_concepts_questions",
				Columns:    []*schema.Column{quizQuestionsColumns[2]},
				RefColumns: []*schema.Column{conceptsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}

	quizAttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "student_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString, Size: 36},
		{Name: "concept_id", Type: field.TypeString, Size: 36, Nullable: true},
		{Name: "selected_answer", Type: field.TypeString, Size: 500, Default: ""},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "response_time_ms", Type: field.TypeInt, Nullable: true},
		{Name: "confidence", Type: field.TypeInt, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	quizAttemptsTable = &schema.Table{
		Name:       "quiz_attempts",
		Columns:    quizAttemptsColumns,
		PrimaryKey: []*schema.Column{quizAttemptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_attempts_quiz_questions_attempts",
				Columns:    []*schema.Column{quizAttemptsColumns[3]},
				RefColumns: []*schema.Column{quizQuestionsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "quiz_attempts_concepts_attempts",
				Columns:    []*schema.Column{quizAttemptsColumns[4]},
				RefColumns: []*schema.Column{conceptsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "quizattempt_student_id_concept_id", Columns: []*schema.Column{quizAttemptsColumns[2], quizAttemptsColumns[4]}},
		},
	}

	masteryScoresColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "student_id", Type: field.TypeString},
		{Name: "concept_id", Type: field.TypeString, Size: 36},
		{Name: "score", Type: field.TypeFloat64, Default: 0},
		{Name: "accuracy", Type: field.TypeFloat64, Default: 0},
		{Name: "exposure_count", Type: field.TypeInt, Default: 0},
		{Name: "confidence", Type: field.TypeFloat64, Default: 0},
		{Name: "stability", Type: field.TypeFloat64, Default: 1.0},
		{Name: "last_reviewed", Type: field.TypeTime, Nullable: true},
		{Name: "next_review_due", Type: field.TypeTime, Nullable: true},
	}
	masteryScoresTable = &schema.Table{
		Name:       "mastery_scores",
		Columns:    masteryScoresColumns,
		PrimaryKey: []*schema.Column{masteryScoresColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "mastery_scores_concepts_mastery",
				Columns:    []*schema.Column{masteryScoresColumns[2]},
				RefColumns: []*schema.Column{conceptsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "masteryscore_student_id_concept_id", Unique: true, Columns: []*schema.Column{masteryScoresColumns[1], masteryScoresColumns[2]}},
		},
	}

	conceptCompletionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "student_id", Type: field.TypeString},
		{Name: "concept_id", Type: field.TypeString, Size: 36},
		{Name: "kind", Type: field.TypeEnum, Enums: []string{"skimmed", "attempted"}},
		{Name: "quiz_score", Type: field.TypeFloat64, Nullable: true},
		{Name: "passed", Type: field.TypeBool, Default: false},
		{Name: "completed_at", Type: field.TypeTime},
		{Name: "sequence", Type: field.TypeInt64, Default: 0},
	}
	conceptCompletionsTable = &schema.Table{
		Name:       "concept_completions",
		Columns:    conceptCompletionsColumns,
		PrimaryKey: []*schema.Column{conceptCompletionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "concept_completions_concepts_completions",
				Columns:    []*schema.Column{conceptCompletionsColumns[2]},
				RefColumns: []*schema.Column{conceptsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "conceptcompletion_student_id_concept_id", Columns: []*schema.Column{conceptCompletionsColumns[1], conceptCompletionsColumns[2]}},
		},
	}

	llmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	llmRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    llmRequestsColumns,
		PrimaryKey: []*schema.Column{llmRequestsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_timestamp", Columns: []*schema.Column{llmRequestsColumns[1]}},
		},
	}

	globalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	globalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    globalSequenceColumns,
		PrimaryKey: []*schema.Column{globalSequenceColumns[0]},
	}

	// tables lists every table in creation order.
	tables = []*schema.Table{
		coursesTable,
		chunksTable,
		conceptsTable,
		conceptEdgesTable,
		quizQuestionsTable,
		quizAttemptsTable,
		masteryScoresTable,
		conceptCompletionsTable,
		llmRequestsTable,
		globalSequenceTable,
	}
)

func init() {
	chunksTable.ForeignKeys[0].RefTable = coursesTable
	conceptsTable.ForeignKeys[0].RefTable = coursesTable
	conceptEdgesTable.ForeignKeys[0].RefTable = conceptsTable
	conceptEdgesTable.ForeignKeys[1].RefTable = conceptsTable
	quizQuestionsTable.ForeignKeys[0].RefTable = coursesTable
	quizQuestionsTable.ForeignKeys[1].RefTable = conceptsTable
	quizAttemptsTable.ForeignKeys[0].RefTable = quizQuestionsTable
	quizAttemptsTable.ForeignKeys[1].RefTable = conceptsTable
	masteryScoresTable.ForeignKeys[0].RefTable = conceptsTable
	conceptCompletionsTable.ForeignKeys[0].RefTable = conceptsTable
}
