package domain

// ActorRole identifies who initiates an operation on an appointment
type ActorRole string

const (
	RoleClient   ActorRole = "client"
	RoleProvider ActorRole = "provider"
	RoleAdmin    ActorRole = "admin"
	RoleSystem   ActorRole = "system"
)

// IsPrivileged returns true for actors allowed to override client-facing
// policy windows (cancellation deadline, confirm/start guards)
func (r ActorRole) IsPrivileged() bool {
	return r == RoleProvider || r == RoleAdmin || r == RoleSystem
}

// SystemActorID идентификатор системного актора для фоновых переходов (sweeper)
const SystemActorID int64 = 0
