// Package quiz holds the core domain model: generated quizzes, graded
// submissions, and the stores that persist them.
package quiz

// Question is one multiple-choice item. Options always has four entries;
// Answer holds the full text of the correct option.
type Question struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Answer     string   `json:"answer,omitempty"`
	Difficulty string   `json:"difficulty"`
}

// Quiz is a generated set of questions for one user and subject.
type Quiz struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Subject    string     `json:"subject"`
	Difficulty string     `json:"difficulty"`
	Questions  []Question `json:"questions"`
	Reasoning  string     `json:"reasoning,omitempty"`
	CreatedAt  int64      `json:"created_at"`
}

// Redacted returns a copy safe to hand to the quiz taker: the answer key is
// blanked on every question.
func (q Quiz) Redacted() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qu := range q.Questions {
		qu.Answer = ""
		out.Questions[i] = qu
	}
	return out
}

// Summary is the list-view projection of a quiz.
type Summary struct {
	ID           string `json:"id"`
	Subject      string `json:"subject"`
	Difficulty   string `json:"difficulty"`
	NumQuestions int    `json:"num_questions"`
	CreatedAt    int64  `json:"created_at"`
}

// Answer is one graded response inside a submission.
type Answer struct {
	QuestionID    string `json:"question_id"`
	Response      string `json:"response"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

// Submission is a graded quiz attempt.
type Submission struct {
	ID          string   `json:"id"`
	QuizID      string   `json:"quiz_id"`
	UserID      string   `json:"user_id"`
	Subject     string   `json:"subject"`
	Score       int      `json:"score"`
	Total       int      `json:"total"`
	Answers     []Answer `json:"answers"`
	Suggestions []string `json:"suggestions"`
	EmailSent   bool     `json:"email_sent"`
	SubmittedAt int64    `json:"submitted_at"`
}

// Grade scores submitted responses against the quiz answer key. Responses
// are keyed by question ID and compared by exact option text; a question
// with no response is graded wrong.
func Grade(q Quiz, responses map[string]string) (int, []Answer) {
	score := 0
	answers := make([]Answer, 0, len(q.Questions))
	for _, qu := range q.Questions {
		resp := responses[qu.ID]
		correct := resp != "" && resp == qu.Answer
		if correct {
			score++
		}
		answers = append(answers, Answer{
			QuestionID:    qu.ID,
			Response:      resp,
			CorrectAnswer: qu.Answer,
			Correct:       correct,
		})
	}
	return score, answers
}
