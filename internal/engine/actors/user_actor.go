package actors

import (
	"campus-gigs/internal/database"
	"campus-gigs/internal/middleware"
	"campus-gigs/internal/models"
	"campus-gigs/internal/types"
	"campus-gigs/internal/utils"
	"log"
	"strings"
	"sync"
	"time"

	stdctx "context"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserSupervisor manages all user actors
type UserSupervisor struct {
	userActors map[uuid.UUID]*actor.PID
	emailToID  map[string]uuid.UUID
	mu         sync.RWMutex
	db         database.Adapter
}

func NewUserSupervisor(db database.Adapter) actor.Actor {
	return &UserSupervisor{
		userActors: make(map[uuid.UUID]*actor.PID),
		emailToID:  make(map[string]uuid.UUID),
		db:         db,
	}
}

type (
	RegisterUserMsg struct {
		Username string
		Email    string
		Password string
		Role     models.UserRole
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	GetUserProfileMsg struct {
		UserID uuid.UUID
	}

	UpdateProfileMsg struct {
		UserID     uuid.UUID
		Bio        string
		Skills     []string
		HourlyRate float64
	}
)

func (s *UserSupervisor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := validateRegistration(msg); err != nil {
			context.Respond(err)
			return
		}

		// Check if email is taken before spawning anything
		ctx := stdctx.Background()
		existingUser, _ := s.db.GetUserByEmail(ctx, msg.Email)
		if existingUser != nil {
			log.Printf("Email already registered: %s", msg.Email)
			context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
			return
		}

		userID := uuid.New()
		props := actor.PropsFromProducer(func() actor.Actor {
			return NewUserActor(userID, s.db)
		})

		pid := context.Spawn(props)
		s.userActors[userID] = pid
		s.emailToID[msg.Email] = userID

		future := context.RequestFuture(pid, msg, 5*time.Second)
		result, err := future.Result()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			context.Respond(utils.NewAppError(utils.ErrActorTimeout, "User creation failed", err))
			return
		}
		context.Respond(result)

	case *LoginMsg:
		ctx := stdctx.Background()
		user, err := s.db.GetUserByEmail(ctx, msg.Email)
		if err != nil {
			log.Printf("UserSupervisor: login for unknown email: %v", err)
			context.Respond(&types.LoginResponse{
				Success: false,
				Error:   "Invalid credentials",
			})
			return
		}

		pid, err := s.getOrCreateUserActor(context, user.ID)
		if err != nil {
			context.Respond(&types.LoginResponse{
				Success: false,
				Error:   "Login failed",
			})
			return
		}

		future := context.RequestFuture(pid, msg, 5*time.Second)
		result, err := future.Result()
		if err != nil {
			log.Printf("UserSupervisor: login request to user actor failed: %v", err)
			context.Respond(&types.LoginResponse{
				Success: false,
				Error:   "Login failed",
			})
			return
		}
		context.Respond(result)

	case *GetUserProfileMsg:
		pid, err := s.getOrCreateUserActor(context, msg.UserID)
		if err != nil {
			context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
			return
		}

		future := context.RequestFuture(pid, msg, 5*time.Second)
		result, err := future.Result()
		if err != nil {
			context.Respond(utils.NewActorTimeoutError("user actor (get profile)"))
			return
		}
		context.Respond(result)

	case *UpdateProfileMsg:
		pid, err := s.getOrCreateUserActor(context, msg.UserID)
		if err != nil {
			context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
			return
		}

		future := context.RequestFuture(pid, msg, 5*time.Second)
		result, err := future.Result()
		if err != nil {
			context.Respond(utils.NewActorTimeoutError("user actor (update profile)"))
			return
		}
		context.Respond(result)
	}
}

func validateRegistration(msg *RegisterUserMsg) *utils.AppError {
	if strings.TrimSpace(msg.Username) == "" {
		return utils.NewValidationError("username is required")
	}
	if strings.TrimSpace(msg.Email) == "" || !strings.Contains(msg.Email, "@") {
		return utils.NewValidationError("a valid email is required")
	}
	if len(msg.Password) < 8 {
		return utils.NewValidationError("password must be at least 8 characters")
	}
	if !models.ValidRole(msg.Role) {
		return utils.NewValidationError("role must be student or client")
	}
	return nil
}

func (s *UserSupervisor) getOrCreateUserActor(context actor.Context, userID uuid.UUID) (*actor.PID, error) {
	s.mu.RLock()
	pid, exists := s.userActors[userID]
	s.mu.RUnlock()

	if exists {
		return pid, nil
	}

	ctx := stdctx.Background()
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserActor(user.ID, s.db)
	})

	pid = context.Spawn(props)

	s.mu.Lock()
	s.userActors[user.ID] = pid
	s.emailToID[user.Email] = user.ID
	s.mu.Unlock()

	return pid, nil
}

// UserActor owns the lifecycle of a single account.
type UserActor struct {
	id uuid.UUID
	db database.Adapter
}

func NewUserActor(id uuid.UUID, db database.Adapter) *UserActor {
	return &UserActor{
		id: id,
		db: db,
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		hashedPassword, err := hashPassword(msg.Password)
		if err != nil {
			context.Respond(utils.NewValidationError("Failed to hash password"))
			return
		}

		now := time.Now()
		user := &models.User{
			ID:             a.id,
			Username:       msg.Username,
			Email:          msg.Email,
			HashedPassword: hashedPassword,
			Role:           msg.Role,
			Skills:         make([]string, 0),
			CreatedAt:      now,
			LastActive:     now,
		}

		ctx := stdctx.Background()
		if err := a.db.SaveUser(ctx, user); err != nil {
			log.Printf("Failed to save user: %v", err)
			if appErr, ok := err.(*utils.AppError); ok {
				context.Respond(appErr)
				return
			}
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save user", err))
			return
		}

		log.Printf("Registered user %s (%s)", a.id, user.Role)
		context.Respond(user)

	case *LoginMsg:
		ctx := stdctx.Background()
		user, err := a.db.GetUserByEmail(ctx, msg.Email)
		if err != nil {
			context.Respond(&types.LoginResponse{
				Success: false,
				Error:   "Invalid credentials",
			})
			return
		}

		err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password))
		if err != nil {
			context.Respond(&types.LoginResponse{
				Success: false,
				Error:   "Invalid credentials",
			})
			return
		}

		token, err := middleware.GenerateToken(user.ID)
		if err != nil {
			log.Printf("Failed to generate token: %v", err)
			context.Respond(&types.LoginResponse{
				Success: false,
				Error:   "Authentication error",
			})
			return
		}

		if err := a.db.UpdateUserActivity(ctx, user.ID); err != nil {
			log.Printf("Warning: failed to update user activity: %v", err)
		}

		context.Respond(&types.LoginResponse{
			Success: true,
			Token:   token,
			UserID:  user.ID.String(),
		})

	case *GetUserProfileMsg:
		ctx := stdctx.Background()
		user, err := a.db.GetUser(ctx, msg.UserID)
		if err != nil {
			if appErr, ok := err.(*utils.AppError); ok {
				context.Respond(appErr)
				return
			}
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to fetch user", err))
			return
		}
		context.Respond(user)

	case *UpdateProfileMsg:
		if msg.HourlyRate < 0 {
			context.Respond(utils.NewValidationError("hourly rate cannot be negative"))
			return
		}

		ctx := stdctx.Background()
		if err := a.db.UpdateUserProfile(ctx, msg.UserID, msg.Bio, msg.Skills, msg.HourlyRate); err != nil {
			if appErr, ok := err.(*utils.AppError); ok {
				context.Respond(appErr)
				return
			}
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update profile", err))
			return
		}

		user, err := a.db.GetUser(ctx, msg.UserID)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to fetch user", err))
			return
		}
		context.Respond(user)
	}
}
