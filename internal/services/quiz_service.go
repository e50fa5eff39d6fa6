package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/metrics"
	"go.uber.org/zap"
)

// ActiveOrderChecker checks whether the user may use the content of a course
type ActiveOrderChecker interface {
	HasActiveOrder(ctx context.Context, userID, courseID int) (bool, error)
}

type quizService struct {
	orders          ActiveOrderChecker
	quizRepo        QuizRepository
	attemptRepo     QuizAttemptRepository
	certificateRepo CertificateRepository
	metrics         *metrics.Metrics
	logger          *zap.Logger
	now             func() time.Time
	shuffle         func(n int, swap func(i, j int))
}

// NewQuizService creates a new quiz service
func NewQuizService(
	orders ActiveOrderChecker,
	quizRepo QuizRepository,
	attemptRepo QuizAttemptRepository,
	certificateRepo CertificateRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *quizService {
	return &quizService{
		orders:          orders,
		quizRepo:        quizRepo,
		attemptRepo:     attemptRepo,
		certificateRepo: certificateRepo,
		metrics:         m,
		logger:          logger,
		now:             time.Now,
		shuffle:         rand.Shuffle,
	}
}

// Start opens a new attempt over a random sample of the active questions
func (s *quizService) Start(ctx context.Context, userID, courseID int) (*models.StartedQuiz, error) {
	quiz, err := s.accessibleQuiz(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	passed, err := s.attemptRepo.HasPassed(ctx, userID, quiz.ID)
	if err != nil {
		return nil, err
	}
	if passed {
		return nil, models.ErrAlreadyPassed
	}

	pool, err := s.quizRepo.GetActiveQuestions(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, models.ErrNoQuestions
	}

	attempt := &models.QuizAttempt{
		UserID:    userID,
		QuizID:    quiz.ID,
		StartedAt: s.now(),
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	return &models.StartedQuiz{
		Quiz:      *quiz,
		Attempt:   *attempt,
		Questions: s.sampleQuestions(pool, quiz.QuestionsCount),
	}, nil
}

// sampleQuestions picks up to count questions without replacement
func (s *quizService) sampleQuestions(pool []models.QuizQuestion, count int) []models.QuizQuestion {
	questions := slices.Clone(pool)
	s.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if count > 0 && count < len(questions) {
		questions = questions[:count]
	}
	return questions
}

// Submit scores the latest attempt of the user.
//
// The second return value is false when the attempt had already been completed:
// its stored result is returned unchanged in that case.
func (s *quizService) Submit(ctx context.Context, userID, courseID int, answers models.Answers) (*models.QuizResult, bool, error) {
	quiz, err := s.accessibleQuiz(ctx, userID, courseID)
	if err != nil {
		return nil, false, err
	}

	attempt, err := s.attemptRepo.GetLatest(ctx, userID, quiz.ID)
	if err != nil {
		return nil, false, err
	}
	if attempt.IsCompleted {
		result, err := s.buildResult(ctx, quiz, attempt)
		return result, false, err
	}

	ids := make([]models.QuestionID, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	questions, err := s.quizRepo.GetQuestionsByIDs(ctx, quiz.ID, ids)
	if err != nil {
		return nil, false, err
	}
	lookup := make(map[models.QuestionID]models.QuizQuestion, len(questions))
	for _, q := range questions {
		lookup[q.ID] = q
	}

	score := ScoreAnswers(answers, lookup, quiz.PassingScore)
	completedAt := s.now()

	attempt.Answers = answers
	attempt.Score = score.Correct
	attempt.Percentage = score.Percentage
	attempt.IsPassed = score.Passed
	attempt.IsCompleted = true
	attempt.CompletedAt = &completedAt
	attempt.TimeTaken = max(0, int(completedAt.Sub(attempt.StartedAt).Seconds()))

	if err := s.attemptRepo.Complete(ctx, attempt); err != nil {
		if !errors.Is(err, models.ErrAlreadyExists) {
			return nil, false, err
		}
		// A concurrent submit won, report its result
		stored, err := s.attemptRepo.GetLatest(ctx, userID, quiz.ID)
		if err != nil {
			return nil, false, err
		}
		result, err := s.buildResult(ctx, quiz, stored)
		return result, false, err
	}
	s.metrics.QuizScored(attempt.IsPassed)

	if attempt.IsPassed {
		if _, err := s.certify(ctx, attempt); err != nil {
			return nil, false, err
		}
	}

	result, err := s.buildResult(ctx, quiz, attempt)
	return result, true, err
}

// Results returns the latest attempt with the review of every answered question
func (s *quizService) Results(ctx context.Context, userID, courseID int) (*models.QuizResult, error) {
	quiz, err := s.accessibleQuiz(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.attemptRepo.GetLatest(ctx, userID, quiz.ID)
	if err != nil {
		return nil, err
	}

	return s.buildResult(ctx, quiz, attempt)
}

// Certificate returns the certificate of the user for the course quiz.
// A passed attempt without a certificate gets one issued now.
func (s *quizService) Certificate(ctx context.Context, userID, courseID int) (*models.QuizCertificate, error) {
	quiz, err := s.accessibleQuiz(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	cert, err := s.certificateRepo.GetByUserAndQuiz(ctx, userID, quiz.ID)
	if err == nil || !errors.Is(err, models.ErrNotFound) {
		return cert, err
	}

	attempt, err := s.attemptRepo.GetLatest(ctx, userID, quiz.ID)
	if errors.Is(err, models.ErrAttemptNotFound) {
		return nil, fmt.Errorf("%w: certificate", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !attempt.IsCompleted || !attempt.IsPassed {
		return nil, fmt.Errorf("%w: certificate", models.ErrNotFound)
	}

	return s.certify(ctx, attempt)
}

// Dashboard lists the completed attempts of the user, newest first
func (s *quizService) Dashboard(ctx context.Context, userID int) ([]models.QuizDashboardItem, error) {
	return s.attemptRepo.GetCompletedByUser(ctx, userID)
}

// certify issues the certificate of a passed attempt. Passing again keeps the first certificate.
func (s *quizService) certify(ctx context.Context, attempt *models.QuizAttempt) (*models.QuizCertificate, error) {
	cert := &models.QuizCertificate{
		UserID:            attempt.UserID,
		QuizID:            attempt.QuizID,
		AttemptID:         attempt.ID,
		CertificateNumber: newCertificateNumber(),
		IssuedAt:          s.now(),
	}

	created, err := s.certificateRepo.CreateIfAbsent(ctx, cert)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("certificate issued",
			zap.Int("userID", cert.UserID), zap.Int("quizID", cert.QuizID), zap.String("number", cert.CertificateNumber))
		return cert, nil
	}

	return s.certificateRepo.GetByUserAndQuiz(ctx, attempt.UserID, attempt.QuizID)
}

// accessibleQuiz returns the active quiz of a course the user has an active order for
func (s *quizService) accessibleQuiz(ctx context.Context, userID, courseID int) (*models.Quiz, error) {
	hasOrder, err := s.orders.HasActiveOrder(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !hasOrder {
		return nil, models.ErrNoAccess
	}

	return s.quizRepo.GetActiveByCourse(ctx, courseID)
}

func (s *quizService) buildResult(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt) (*models.QuizResult, error) {
	result := &models.QuizResult{
		Quiz:    *quiz,
		Attempt: *attempt,
		Review:  []models.QuestionReview{},
	}
	if !attempt.IsCompleted {
		return result, nil
	}

	ids := make([]models.QuestionID, 0, len(attempt.Answers))
	for id := range attempt.Answers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	questions, err := s.quizRepo.GetQuestionsByIDs(ctx, quiz.ID, ids)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		selected := attempt.Answers[q.ID]
		result.Review = append(result.Review, models.QuestionReview{
			QuestionID:    q.ID,
			Text:          q.Text,
			Selected:      selected,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     selected == q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	if attempt.IsPassed {
		cert, err := s.certificateRepo.GetByUserAndQuiz(ctx, attempt.UserID, quiz.ID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		result.Certificate = cert
	}

	return result, nil
}
