package domain

import "context"

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserBySubject(ctx context.Context, subject string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
}

// QuizRepository defines the interface for quiz, question and response
// persistence. Not-found lookups return (nil, nil); services translate that
// into domain errors.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	GetQuizByID(ctx context.Context, quizID string) (*Quiz, error)
	UpdateQuizStatus(ctx context.Context, quizID string, status QuizStatus) error
	CompleteQuiz(ctx context.Context, quiz *Quiz) error
	GetCompletedQuizzesByUser(ctx context.Context, userID string) ([]*Quiz, error)

	CreateQuestion(ctx context.Context, question *QuizQuestion) error
	GetQuestionByID(ctx context.Context, questionID string) (*QuizQuestion, error)
	GetQuestionsByQuiz(ctx context.Context, quizID string) ([]*QuizQuestion, error)

	// UpsertResponse inserts a response or, when the (user, quiz, question)
	// triple already has one, replaces it in place keeping the original ID.
	UpsertResponse(ctx context.Context, response *QuizResponse) (*QuizResponse, error)
	GetResponses(ctx context.Context, userID, quizID string) ([]*QuizResponse, error)
}

// KnowledgeRepository defines persistence for the per-user knowledge graph.
type KnowledgeRepository interface {
	// GetNodeByTopic finds a node by exact topic match for a user, or (nil, nil).
	GetNodeByTopic(ctx context.Context, userID, topic string) (*KnowledgeNode, error)
	CreateNode(ctx context.Context, node *KnowledgeNode) error
	// UpdateNode rewrites a node's description and understanding level.
	UpdateNode(ctx context.Context, node *KnowledgeNode) error
	UpdateNodeUnderstanding(ctx context.Context, nodeID string, level int) error

	// FindEdge locates an existing edge with the same (source, target, label)
	// triple, or (nil, nil).
	FindEdge(ctx context.Context, userID, sourceID, targetID, label string) (*KnowledgeEdge, error)
	CreateEdge(ctx context.Context, edge *KnowledgeEdge) error

	GetGraph(ctx context.Context, userID string) (*Graph, error)
}

// LearningPlanRepository defines persistence for learning plans.
type LearningPlanRepository interface {
	CreatePlan(ctx context.Context, plan *LearningPlan) error
	GetPlanByID(ctx context.Context, planID string) (*LearningPlan, error)
	GetLatestPlanByUser(ctx context.Context, userID string) (*LearningPlan, error)
	UpdatePlanSteps(ctx context.Context, planID string, steps []LearningPlanStep) error
}

// ChatRepository defines persistence for chat threads and messages.
type ChatRepository interface {
	CreateThread(ctx context.Context, thread *ChatThread) error
	GetThreadByID(ctx context.Context, threadID string) (*ChatThread, error)
	GetThreadsByUser(ctx context.Context, userID string) ([]*ChatThread, error)
	TouchThread(ctx context.Context, threadID string) error

	AppendMessage(ctx context.Context, message *ChatMessage) error
	GetMessagesByThread(ctx context.Context, threadID string) ([]*ChatMessage, error)
}

// TransactionManager runs a function inside a database transaction. The
// transaction travels in the context; repositories pick it up transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
