package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// SimConfig controls the synthetic marketplace load.
type SimConfig struct {
	NumClients       int
	NumStudents      int
	ProjectsPerUser  int
	MessageFrequency float64 // messages per pair per minute
	SimulationTime   time.Duration
	APIURL           string
}

// SimulationStats aggregates request outcomes across goroutines.
type SimulationStats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	TotalRequests    int64
	SuccessRequests  int64
	FailedRequests   int64
	TotalProjects    int
	TotalHires       int
	TotalMessages    int
	RequestLatencies []time.Duration
}

// Metrics is the read-only snapshot reported at the end of a run.
type Metrics struct {
	TotalUsers    int
	TotalProjects int
	TotalHires    int
	TotalMessages int
	ErrorCount    int64
	AvgLatency    time.Duration
}

// SimulatedUser tracks one registered account and its auth token.
type SimulatedUser struct {
	ID       string
	Username string
	Email    string
	Token    string
	Role     string
	Projects []string // project IDs this client posted
}

type Simulator struct {
	config   SimConfig
	stats    *SimulationStats
	clients  []*SimulatedUser
	students []*SimulatedUser
	client   *http.Client
	mu       sync.RWMutex
}

func NewSimulator(config SimConfig) *Simulator {
	return &Simulator{
		config: config,
		stats: &SimulationStats{
			StartTime:        time.Now(),
			RequestLatencies: make([]time.Duration, 0),
		},
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Run walks the whole marketplace flow: registration, project posting,
// applications, a hire per project, work submission and approval, reviews,
// and then a chat phase between the hired pairs until the clock runs out.
func (s *Simulator) Run(ctx context.Context) error {
	log.Printf("Starting marketplace simulation...")

	if err := s.registerUsers(ctx); err != nil {
		return fmt.Errorf("registration phase failed: %v", err)
	}

	pairs, err := s.runHiringPhase(ctx)
	if err != nil {
		return fmt.Errorf("hiring phase failed: %v", err)
	}

	s.runChatPhase(ctx, pairs)
	return nil
}

func (s *Simulator) registerUsers(ctx context.Context) error {
	log.Printf("Phase 1: registering %d clients and %d students...", s.config.NumClients, s.config.NumStudents)

	runID := time.Now().UnixNano()
	for i := 0; i < s.config.NumClients; i++ {
		user, err := s.registerAndLogin(ctx, fmt.Sprintf("client%d_%d", i, runID), "client")
		if err != nil {
			return err
		}
		s.clients = append(s.clients, user)
	}
	for i := 0; i < s.config.NumStudents; i++ {
		user, err := s.registerAndLogin(ctx, fmt.Sprintf("student%d_%d", i, runID), "student")
		if err != nil {
			return err
		}
		s.students = append(s.students, user)
	}
	return nil
}

func (s *Simulator) registerAndLogin(ctx context.Context, name, role string) (*SimulatedUser, error) {
	email := name + "@sim.local"
	password := "simulated-pass-1"

	var registered struct {
		ID string `json:"id"`
	}
	err := s.post(ctx, "/auth/register", "", map[string]interface{}{
		"username": name,
		"email":    email,
		"password": password,
		"role":     role,
	}, &registered)
	if err != nil {
		return nil, fmt.Errorf("register %s: %v", name, err)
	}

	var login struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		UserID  string `json:"userId"`
	}
	err = s.post(ctx, "/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	}, &login)
	if err != nil || !login.Success {
		return nil, fmt.Errorf("login %s: %v", name, err)
	}

	return &SimulatedUser{
		ID:       login.UserID,
		Username: name,
		Email:    email,
		Token:    login.Token,
		Role:     role,
	}, nil
}

// hiredPair is a client/student pairing produced by the hiring phase, used to
// drive the chat phase.
type hiredPair struct {
	client  *SimulatedUser
	student *SimulatedUser
}

func (s *Simulator) runHiringPhase(ctx context.Context) ([]hiredPair, error) {
	log.Printf("Phase 2: posting projects and hiring...")

	var pairs []hiredPair
	skills := []string{"go", "python", "design", "writing", "data"}

	for _, client := range s.clients {
		for p := 0; p < s.config.ProjectsPerUser; p++ {
			var project struct {
				ID string `json:"id"`
			}
			err := s.post(ctx, "/projects", client.Token, map[string]interface{}{
				"title":       fmt.Sprintf("%s project %d", client.Username, p),
				"description": "Simulated workload",
				"budget":      float64(50 + rand.Intn(500)),
				"skills":      []string{skills[rand.Intn(len(skills))]},
			}, &project)
			if err != nil {
				log.Printf("project creation failed for %s: %v", client.Username, err)
				continue
			}
			client.Projects = append(client.Projects, project.ID)
			s.stats.mu.Lock()
			s.stats.TotalProjects++
			s.stats.mu.Unlock()

			student := s.students[rand.Intn(len(s.students))]
			var application struct {
				ID string `json:"id"`
			}
			err = s.post(ctx, "/projects/"+project.ID+"/applications", student.Token, map[string]interface{}{
				"coverLetter": "I can do this",
				"bidAmount":   float64(40 + rand.Intn(400)),
			}, &application)
			if err != nil {
				log.Printf("application failed for %s: %v", student.Username, err)
				continue
			}

			err = s.put(ctx, "/applications/"+application.ID+"/status", client.Token, map[string]interface{}{
				"status": "accepted",
			}, nil)
			if err != nil {
				log.Printf("accept failed for %s: %v", client.Username, err)
				continue
			}

			var submission struct {
				ID string `json:"id"`
			}
			err = s.post(ctx, "/applications/"+application.ID+"/submissions", student.Token, map[string]interface{}{
				"note":    "First draft attached",
				"fileUrl": "https://files.sim.local/" + application.ID,
			}, &submission)
			if err != nil {
				log.Printf("submission failed for %s: %v", student.Username, err)
				continue
			}

			err = s.post(ctx, "/submissions/"+submission.ID+"/review", client.Token, map[string]interface{}{
				"action":  "approve",
				"comment": "Looks good",
			}, nil)
			if err != nil {
				log.Printf("approval failed for %s: %v", client.Username, err)
				continue
			}

			s.post(ctx, "/projects/"+project.ID+"/reviews", client.Token, map[string]interface{}{
				"rating":  1 + rand.Intn(5),
				"comment": "Simulated client review",
			}, nil)
			s.post(ctx, "/projects/"+project.ID+"/reviews", student.Token, map[string]interface{}{
				"rating":  1 + rand.Intn(5),
				"comment": "Simulated student review",
			}, nil)

			s.stats.mu.Lock()
			s.stats.TotalHires++
			s.stats.mu.Unlock()
			pairs = append(pairs, hiredPair{client: client, student: student})
		}
	}

	log.Printf("Hiring phase done: %d projects, %d completed hires", s.stats.TotalProjects, s.stats.TotalHires)
	return pairs, nil
}

func (s *Simulator) runChatPhase(ctx context.Context, pairs []hiredPair) {
	if len(pairs) == 0 {
		log.Printf("No hired pairs, skipping chat phase")
		return
	}
	log.Printf("Phase 3: chatting across %d pairs...", len(pairs))

	interval := time.Duration(float64(time.Minute) / s.config.MessageFrequency)
	deadline := time.After(s.config.SimulationTime)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	conversations := make(map[*SimulatedUser]string)
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-ticker.C:
			pair := pairs[rand.Intn(len(pairs))]
			sender, recipient := pair.client, pair.student
			if rand.Intn(2) == 0 {
				sender, recipient = recipient, sender
			}

			conversationID, ok := conversations[sender]
			if !ok {
				var conversation struct {
					ID string `json:"id"`
				}
				err := s.post(ctx, "/messages/conversations", sender.Token, map[string]interface{}{
					"userId": recipient.ID,
				}, &conversation)
				if err != nil {
					log.Printf("start conversation failed: %v", err)
					continue
				}
				conversationID = conversation.ID
				conversations[sender] = conversationID
				conversations[recipient] = conversationID
			}

			err := s.post(ctx, "/messages/conversations/"+conversationID+"/messages", sender.Token, map[string]interface{}{
				"content": fmt.Sprintf("ping from %s at %s", sender.Username, time.Now().Format(time.RFC3339)),
			}, nil)
			if err != nil {
				log.Printf("send message failed: %v", err)
				continue
			}
			s.stats.mu.Lock()
			s.stats.TotalMessages++
			s.stats.mu.Unlock()
		}
	}
}

func (s *Simulator) post(ctx context.Context, path, token string, body interface{}, out interface{}) error {
	return s.do(ctx, http.MethodPost, path, token, body, out)
}

func (s *Simulator) put(ctx context.Context, path, token string, body interface{}, out interface{}) error {
	return s.do(ctx, http.MethodPut, path, token, body, out)
}

func (s *Simulator) do(ctx context.Context, method, path, token string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)

	s.stats.mu.Lock()
	s.stats.TotalRequests++
	s.stats.RequestLatencies = append(s.stats.RequestLatencies, latency)
	if err != nil || resp.StatusCode >= 400 {
		s.stats.FailedRequests++
	} else {
		s.stats.SuccessRequests++
	}
	s.stats.mu.Unlock()

	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// GetMetrics returns the final counters for reporting.
func (s *Simulator) GetMetrics() Metrics {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	var avg time.Duration
	if len(s.stats.RequestLatencies) > 0 {
		var total time.Duration
		for _, l := range s.stats.RequestLatencies {
			total += l
		}
		avg = total / time.Duration(len(s.stats.RequestLatencies))
	}

	return Metrics{
		TotalUsers:    len(s.clients) + len(s.students),
		TotalProjects: s.stats.TotalProjects,
		TotalHires:    s.stats.TotalHires,
		TotalMessages: s.stats.TotalMessages,
		ErrorCount:    s.stats.FailedRequests,
		AvgLatency:    avg,
	}
}
