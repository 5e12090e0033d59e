package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/leeveo/quizz/internal/domain"
)

// Repository implements every app repository on top of bun/Postgres.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	_, err := r.db.NewInsert().Model(quizFromDomain(quiz)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *Repository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	row := new(quizRow)
	err := r.db.NewSelect().Model(row).Where("q.id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("select quiz: %w", err)
	}
	return row.toDomain(), nil
}

func (r *Repository) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	res, err := r.db.NewUpdate().Model(quizFromDomain(quiz)).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *Repository) SetActiveQuestion(ctx context.Context, quizID, questionID string) error {
	res, err := r.db.NewUpdate().
		Model((*quizRow)(nil)).
		Set("active_question_id = ?", questionID).
		Where("id = ?", quizID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set active question: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *Repository) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	if err := r.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, rows[i].toDomain())
	}
	return quizzes, nil
}

func (r *Repository) AddQuestion(ctx context.Context, question *domain.Question) error {
	_, err := r.db.NewInsert().Model(questionFromDomain(question)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (r *Repository) AddQuestions(ctx context.Context, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	rows := make([]questionRow, 0, len(questions))
	for i := range questions {
		rows = append(rows, *questionFromDomain(&questions[i]))
	}
	if _, err := r.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}

func (r *Repository) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	row := new(questionRow)
	err := r.db.NewSelect().Model(row).Where("qq.id = ?", questionID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("select question: %w", err)
	}
	return row.toDomain(), nil
}

func (r *Repository) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	var rows []questionRow
	err := r.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("order_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, rows[i].toDomain())
	}
	return questions, nil
}

func (r *Repository) DeleteQuestion(ctx context.Context, questionID string) error {
	res, err := r.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", questionID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (r *Repository) CreateTheme(ctx context.Context, theme *domain.Theme) error {
	row := &themeRow{ID: theme.ID, Name: theme.Name, Description: theme.Description}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert theme: %w", err)
	}
	return nil
}

func (r *Repository) ListThemes(ctx context.Context) ([]domain.Theme, error) {
	var rows []themeRow
	if err := r.db.NewSelect().Model(&rows).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	themes := make([]domain.Theme, 0, len(rows))
	for _, row := range rows {
		themes = append(themes, domain.Theme{ID: row.ID, Name: row.Name, Description: row.Description})
	}
	return themes, nil
}

func (r *Repository) AddThemeQuestion(ctx context.Context, question *domain.ThemeQuestion) error {
	row := &themeQuestionRow{
		ID:            question.ID,
		ThemeID:       question.ThemeID,
		Content:       question.Content,
		Options:       question.Options,
		CorrectOption: question.CorrectOption,
		Duration:      question.Duration,
		ImageURL:      question.ImageURL,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrThemeNotFound
		}
		return fmt.Errorf("insert theme question: %w", err)
	}
	return nil
}

func (r *Repository) ListThemeQuestions(ctx context.Context, themeID string) ([]domain.ThemeQuestion, error) {
	var rows []themeQuestionRow
	err := r.db.NewSelect().Model(&rows).
		Where("theme_id = ?", themeID).
		Order("content ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list theme questions: %w", err)
	}
	questions := make([]domain.ThemeQuestion, 0, len(rows))
	for i := range rows {
		questions = append(questions, rows[i].toDomain())
	}
	return questions, nil
}

func (r *Repository) GetThemeQuestions(ctx context.Context, ids []string) ([]domain.ThemeQuestion, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []themeQuestionRow
	err := r.db.NewSelect().Model(&rows).
		Where("tq.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select theme questions: %w", err)
	}
	if len(rows) != len(ids) {
		return nil, domain.ErrQuestionNotFound
	}
	byID := make(map[string]domain.ThemeQuestion, len(rows))
	for i := range rows {
		byID[rows[i].ID] = rows[i].toDomain()
	}
	// Preserve the requested order; import order is the quiz order.
	questions := make([]domain.ThemeQuestion, 0, len(ids))
	for _, id := range ids {
		questions = append(questions, byID[id])
	}
	return questions, nil
}

func (r *Repository) AddParticipant(ctx context.Context, participant *domain.Participant) error {
	row := &participantRow{
		ID:          participant.ID,
		QuizID:      participant.QuizID,
		Name:        participant.Name,
		AvatarEmoji: participant.AvatarEmoji,
		ConnectedAt: participant.ConnectedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *Repository) GetParticipant(ctx context.Context, participantID string) (domain.Participant, error) {
	row := new(participantRow)
	err := r.db.NewSelect().Model(row).Where("p.id = ?", participantID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("select participant: %w", err)
	}
	return row.toDomain(), nil
}

func (r *Repository) ListParticipants(ctx context.Context, quizID string) ([]domain.Participant, error) {
	var rows []participantRow
	err := r.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("connected_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	participants := make([]domain.Participant, 0, len(rows))
	for i := range rows {
		participants = append(participants, rows[i].toDomain())
	}
	return participants, nil
}

func (r *Repository) InsertAnswer(ctx context.Context, answer *domain.ParticipantAnswer) error {
	row := &answerRow{
		ID:             answer.ID,
		ParticipantID:  answer.ParticipantID,
		QuestionID:     answer.QuestionID,
		QuizID:         answer.QuizID,
		SelectedOption: answer.SelectedOption,
		AnsweredAt:     answer.AnsweredAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyAnswered
		}
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

func (r *Repository) GetAnswer(ctx context.Context, participantID, questionID string) (domain.ParticipantAnswer, error) {
	row := new(answerRow)
	err := r.db.NewSelect().Model(row).
		Where("participant_id = ?", participantID).
		Where("question_id = ?", questionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ParticipantAnswer{}, domain.ErrAnswerNotFound
	}
	if err != nil {
		return domain.ParticipantAnswer{}, fmt.Errorf("select answer: %w", err)
	}
	return row.toDomain(), nil
}

func (r *Repository) ListAnswersByQuestion(ctx context.Context, questionID string) ([]domain.ParticipantAnswer, error) {
	var rows []answerRow
	err := r.db.NewSelect().Model(&rows).
		Where("question_id = ?", questionID).
		Order("answered_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list answers by question: %w", err)
	}
	answers := make([]domain.ParticipantAnswer, 0, len(rows))
	for i := range rows {
		answers = append(answers, rows[i].toDomain())
	}
	return answers, nil
}

func (r *Repository) ListAnswersByQuiz(ctx context.Context, quizID string) ([]domain.ParticipantAnswer, error) {
	var rows []answerRow
	err := r.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("answered_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list answers by quiz: %w", err)
	}
	answers := make([]domain.ParticipantAnswer, 0, len(rows))
	for i := range rows {
		answers = append(answers, rows[i].toDomain())
	}
	return answers, nil
}

func (r *Repository) UpsertActiveQuestion(ctx context.Context, active domain.ActiveQuestion) error {
	row := &activeQuestionRow{
		QuizID:        active.QuizID,
		QuestionID:    active.QuestionID,
		Stage:         string(active.Stage),
		ShowResults:   active.ShowResults,
		CorrectOption: active.CorrectOption,
	}
	_, err := r.db.NewInsert().Model(row).
		On("CONFLICT (quiz_id) DO UPDATE").
		Set("question_id = EXCLUDED.question_id").
		Set("stage = EXCLUDED.stage").
		Set("show_results = EXCLUDED.show_results").
		Set("correct_option = EXCLUDED.correct_option").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert active question: %w", err)
	}
	return nil
}

func (r *Repository) GetActiveQuestion(ctx context.Context, quizID string) (domain.ActiveQuestion, error) {
	row := new(activeQuestionRow)
	err := r.db.NewSelect().Model(row).Where("quiz_id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ActiveQuestion{}, domain.ErrQuizNotStarted
	}
	if err != nil {
		return domain.ActiveQuestion{}, fmt.Errorf("select active question: %w", err)
	}
	return row.toDomain(), nil
}

func (r *Repository) ClearActiveQuestion(ctx context.Context, quizID string) error {
	_, err := r.db.NewDelete().Model((*activeQuestionRow)(nil)).Where("quiz_id = ?", quizID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear active question: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23503"
}
