// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/copystructure"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/common"
	"github.com/AccelByte/extend-lobby-server/pkg/constants"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/metrics"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/session"
	"github.com/AccelByte/extend-lobby-server/pkg/utils"
)

const (
	defaultServerName       = "ATLAS"
	loadoutSelectTimeout    = 30 * time.Second
	resolveTimeoutLimit     = 1600
	reportTimeout           = 10 * time.Second
	gameServerShutdownTimer = -1
)

// Pool is where a bridge server registers itself once it knows its address.
type Pool interface {
	AddServer(server *Server)
	RemoveServer(processCode string)
}

// Submitter runs work off the caller's goroutine. *ants.Pool satisfies it.
type Submitter interface {
	Submit(task func()) error
}

// Transport delivers encoded frames to the game server process. WriteMessage never blocks.
type Transport interface {
	WriteMessage(frame []byte) bool
	Close()
}

type Timings struct {
	ResultsDelay    time.Duration
	ShutdownDelay   time.Duration
	StopGracePeriod time.Duration
}

// Environment holds the collaborators shared by every bridge server.
type Environment struct {
	Sessions *session.Registry
	Pool     Pool
	Accounts accountstore.Store
	Reporter accountstore.GameReporter
	Workers  Submitter
	Metrics  metrics.LobbyMetrics
	Buffers  *models.Pool
	Timings  Timings
}

// Server is the lobby side of one game server process and the game it hosts.
type Server struct {
	env       *Environment
	transport Transport

	processCode string
	ctx         context.Context
	cancel      context.CancelFunc
	background  sync.WaitGroup

	mu           sync.RWMutex
	sessionInfo  models.SessionInfo
	address      string
	port         int
	private      bool
	connected    bool
	status       models.GameStatus
	gameInfo     models.GameInfo
	teamInfo     models.TeamInfo
	stopTime     time.Time
	shuttingDown bool

	selectionMu sync.Mutex
	// pendingSelection holds the character each flagged player had when flagged.
	pendingSelection map[int64]models.CharacterType
	// substitutions holds the last character of accounts the resolver changed, restored when the game stops.
	substitutions map[int64]models.CharacterType
	randIntN      func(n int) int
}

func NewServer(env *Environment, transport Transport) *Server {
	if env.Buffers == nil {
		env.Buffers = models.NewPool()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		env:              env,
		transport:        transport,
		processCode:      utils.GenerateProcessCode(constants.ProcessCodePrefix),
		ctx:              ctx,
		cancel:           cancel,
		connected:        true,
		status:           models.GameStatusStopped,
		teamInfo:         models.TeamInfo{TeamPlayerInfo: []models.PlayerInfo{}},
		pendingSelection: map[int64]models.CharacterType{},
		substitutions:    map[int64]models.CharacterType{},
		randIntN:         rand.IntN,
	}
}

func (s *Server) ProcessCode() string {
	return s.processCode
}

func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

func (s *Server) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port
}

// URI is the address clients use to reach the game.
func (s *Server) URI() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uriLocked()
}

func (s *Server) uriLocked() string {
	return "ws://" + s.address + ":" + strconv.Itoa(s.port)
}

func (s *Server) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sessionInfo.UserName == "" {
		return defaultServerName
	}
	return s.sessionInfo.UserName
}

func (s *Server) BuildVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionInfo.BuildVersion
}

func (s *Server) IsPrivate() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.private
}

func (s *Server) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Server) Status() models.GameStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// StopTime is the end of the window in which leaving the stopped game still counts as abandoning it.
func (s *Server) StopTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopTime
}

func (s *Server) GameInfo() models.GameInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameInfo
}

// TeamInfo returns a copy of the roster.
func (s *Server) TeamInfo() models.TeamInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teamInfoLocked()
}

func (s *Server) teamInfoLocked() models.TeamInfo {
	players := make([]models.PlayerInfo, len(s.teamInfo.TeamPlayerInfo))
	copy(players, s.teamInfo.TeamPlayerInfo)
	return models.TeamInfo{TeamPlayerInfo: players}
}

func (s *Server) isAvailableLocked() bool {
	return (s.status == models.GameStatusStopped || s.status == models.GameStatusNone) &&
		!s.private && s.connected && !s.shuttingDown
}

// IsAvailable reports whether the server can host a new game.
func (s *Server) IsAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAvailableLocked()
}

// ReserveForGame moves the server to Assembling and clears what is left of the previous game.
// The caller checks IsAvailable first.
func (s *Server) ReserveForGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserveLocked()
}

// TryReserveForGame reserves the server if it is available, in one step.
func (s *Server) TryReserveForGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAvailableLocked() {
		return false
	}
	s.reserveLocked()
	return true
}

func (s *Server) reserveLocked() {
	s.status = models.GameStatusAssembling
	s.gameInfo = models.GameInfo{}
	s.teamInfo = models.TeamInfo{TeamPlayerInfo: []models.PlayerInfo{}}
	s.stopTime = time.Time{}
}

// CancelReservation returns a reserved server whose game never launched to the pool.
func (s *Server) CancelReservation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.GameStatusAssembling {
		return false
	}
	s.status = models.GameStatusStopped
	s.gameInfo.GameStatus = models.GameStatusStopped
	return true
}

func (s *Server) setStatusLocked(status models.GameStatus) {
	if status == models.GameStatusStopped && s.status != models.GameStatusStopped {
		s.stopTime = time.Now().Add(s.env.Timings.StopGracePeriod)
	}
	s.status = status
	s.gameInfo.GameStatus = status
}

// GetPlayerInfo returns the roster entry of the account.
func (s *Server) GetPlayerInfo(accountID int64) (models.PlayerInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.teamInfo.Find(accountID); i >= 0 {
		return s.teamInfo.TeamPlayerInfo[i], true
	}
	return models.PlayerInfo{}, false
}

// GetPlayers returns the account ids of the roster in roster order.
func (s *Server) GetPlayers() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.teamInfo.TeamPlayerInfo))
	for _, p := range s.teamInfo.TeamPlayerInfo {
		ids = append(ids, p.AccountID)
	}
	return ids
}

// GetTeamPlayers returns the account ids of one team.
func (s *Server) GetTeamPlayers(team models.Team) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for _, p := range s.teamInfo.TeamPlayerInfo {
		if p.TeamID == team {
			ids = append(ids, p.AccountID)
		}
	}
	return ids
}

// HasPlayer reports whether the account is on the roster.
func (s *Server) HasPlayer(accountID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teamInfo.Find(accountID) >= 0
}

// GetClients returns the live connections of human players still in the game.
func (s *Server) GetClients() []session.Connection {
	s.mu.RLock()
	players := s.teamInfoLocked().TeamPlayerInfo
	s.mu.RUnlock()

	clients := make([]session.Connection, 0, len(players))
	for _, p := range players {
		if !p.IsHumanParticipant() {
			continue
		}
		if conn := s.env.Sessions.GetClientConnection(p.AccountID); conn != nil {
			clients = append(clients, conn)
		}
	}
	return clients
}

// FillTeam adds the connected accounts to a team, ready, numbered after the current roster.
func (s *Server) FillTeam(scope *envelope.Scope, accountIDs []int64, team models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, accountID := range accountIDs {
		if s.env.Sessions.GetClientConnection(accountID) == nil {
			scope.Log.Errorf("Tried to add %d to a game but they are not connected!", accountID)
			continue
		}
		playerInfo, ok := s.env.Sessions.GetPlayerInfo(accountID)
		if !ok {
			scope.Log.Errorf("Tried to add %d to a game but they have no lobby player info", accountID)
			continue
		}
		playerInfo.ReadyState = models.ReadyStateReady
		playerInfo.TeamID = team
		playerInfo.PlayerID = int32(len(s.teamInfo.TeamPlayerInfo) + 1)
		scope.Log.Infof("adding player %s, %d to %s. readystate: %s", playerInfo.Handle, accountID, team, playerInfo.ReadyState)
		s.teamInfo.TeamPlayerInfo = append(s.teamInfo.TeamPlayerInfo, playerInfo)
	}
}

// BuildGameInfo describes the game about to be launched from the current roster.
func (s *Server) BuildGameInfo(gameType models.GameType, subType models.GameSubType, mapName string) models.GameInfo {
	playerCount := int32(len(s.GetClients()))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameInfo = models.GameInfo{
		GameServerProcessCode: s.processCode,
		GameServerAddress:     s.uriLocked(),
		GameStatus:            s.status,
		GameResult:            models.GameResultNoResult,
		GameConfig: models.GameConfig{
			GameType:               gameType,
			SubType:                subType.Name,
			Map:                    mapName,
			TeamAPlayers:           int32(len(s.teamInfo.TeamA())),
			TeamBPlayers:           int32(len(s.teamInfo.TeamB())),
			ResolveTimeoutLimit:    resolveTimeoutLimit,
			GameServerShutdownTime: gameServerShutdownTimer,
			IsActive:               true,
		},
		AcceptedPlayers:      playerCount,
		ActivePlayers:        playerCount,
		ActiveHumanPlayers:   playerCount,
		LoadoutSelectTimeout: loadoutSelectTimeout,
		CreateTimestamp:      time.Now().UTC(),
	}
	return s.gameInfo
}

// StartGame tells the game server about every roster player, then launches the game.
func (s *Server) StartGame(scope *envelope.Scope) error {
	s.mu.Lock()
	s.setStatusLocked(models.GameStatusAssembling)
	gameInfo := s.gameInfo
	teamInfo := s.teamInfoLocked()
	s.mu.Unlock()

	sessionInfos := make(map[int32]models.SessionInfo, len(teamInfo.TeamPlayerInfo))
	for _, p := range teamInfo.TeamPlayerInfo {
		// bots have no session
		info, _ := s.env.Sessions.GetSessionInfo(p.AccountID)
		sessionInfos[p.PlayerID] = info
	}

	for _, p := range teamInfo.TeamPlayerInfo {
		err := s.Send(scope, &JoinGameServerRequest{
			GameServerProcessCode: gameInfo.GameServerProcessCode,
			PlayerInfo:            p,
			SessionInfo:           sessionInfos[p.PlayerID],
		}, 0)
		if err != nil {
			return fmt.Errorf("unable to send join request for %d: %w", p.AccountID, err)
		}
	}

	return s.Send(scope, &LaunchGameRequest{
		GameInfo:    gameInfo,
		TeamInfo:    teamInfo,
		SessionInfo: sessionInfos,
	}, 0)
}

// StartGameForReconnection puts a returning player back into the running game.
func (s *Server) StartGameForReconnection(scope *envelope.Scope, accountID int64) error {
	playerInfo, ok := s.GetPlayerInfo(accountID)
	if !ok {
		return models.ErrPlayerNotInGame
	}
	sessionInfo, ok := s.env.Sessions.GetSessionInfo(accountID)
	if !ok {
		return fmt.Errorf("%w: account %d", models.ErrNoSessionToResume, accountID)
	}

	err := s.Send(scope, &ReconnectPlayerRequest{
		AccountID:    accountID,
		NewSessionID: sessionInfo.ReconnectSessionToken,
	}, 0)
	if err != nil {
		return err
	}

	return s.Send(scope, &JoinGameServerRequest{
		GameServerProcessCode: s.GameInfo().GameServerProcessCode,
		PlayerInfo:            playerInfo,
		SessionInfo:           sessionInfo,
	}, 0)
}

// SendGameInfoNotifications pushes the game state to every roster player who is online.
func (s *Server) SendGameInfoNotifications() {
	for _, accountID := range s.GetPlayers() {
		if conn := s.env.Sessions.GetClientConnection(accountID); conn != nil {
			s.SendGameInfo(conn)
		}
	}
}

func (s *Server) SendGameInfo(conn session.Connection) bool {
	s.mu.RLock()
	i := s.teamInfo.Find(conn.AccountID())
	if i < 0 {
		s.mu.RUnlock()
		return false
	}
	notification := models.GameInfoNotification{
		GameInfo:   s.gameInfo,
		TeamInfo:   s.teamInfoLocked(),
		PlayerInfo: s.teamInfo.TeamPlayerInfo[i],
	}
	s.mu.RUnlock()

	return conn.Send(notification)
}

func (s *Server) SendGameAssignmentNotification(conn session.Connection, reconnection bool) bool {
	s.mu.RLock()
	i := s.teamInfo.Find(conn.AccountID())
	if i < 0 {
		s.mu.RUnlock()
		return false
	}
	gameInfo := s.gameInfo
	playerInfo := s.teamInfo.TeamPlayerInfo[i]
	s.mu.RUnlock()

	return conn.Send(models.GameAssignmentNotification{
		GameInfo:     &gameInfo,
		GameResult:   gameInfo.GameResult,
		PlayerInfo:   &playerInfo,
		Observer:     false,
		Reconnection: reconnection,
	})
}

// Send encodes the message and queues it on the transport.
func (s *Server) Send(scope *envelope.Scope, msg Message, callbackID int32) error {
	if !s.IsConnected() {
		return fmt.Errorf("%w: %s", models.ErrNotConnected, s.processCode)
	}

	buf := s.env.Buffers.GetFrameBuffer()
	defer s.env.Buffers.PutFrameBuffer(buf)

	if err := EncodeFrame(NewWriter(buf), msg, callbackID); err != nil {
		scope.Log.Errorf("No sender for %T", msg)
		return err
	}
	frame := make([]byte, buf.Len())
	copy(frame, buf.Bytes())

	if !s.transport.WriteMessage(frame) {
		return fmt.Errorf("%w: send buffer of %s is full", models.ErrNotConnected, s.processCode)
	}
	common.LogPayload(scope.Log, ">", MessageName(msg), msg)
	return nil
}

// Snapshot is a point in time copy of a server for status pages.
type Snapshot struct {
	ProcessCode  string            `json:"processCode"`
	Name         string            `json:"name"`
	BuildVersion string            `json:"buildVersion"`
	Address      string            `json:"address"`
	Port         int               `json:"port"`
	Private      bool              `json:"private"`
	Connected    bool              `json:"connected"`
	Status       models.GameStatus `json:"status"`
	GameInfo     models.GameInfo   `json:"gameInfo"`
	TeamInfo     models.TeamInfo   `json:"teamInfo"`
	StopTime     time.Time         `json:"stopTime"`
}

func (s *Server) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teamInfo, err := copystructure.Copy(s.teamInfo)
	if err != nil {
		return Snapshot{}, fmt.Errorf("unable to copy roster of %s: %w", s.processCode, err)
	}
	name := s.sessionInfo.UserName
	if name == "" {
		name = defaultServerName
	}
	return Snapshot{
		ProcessCode:  s.processCode,
		Name:         name,
		BuildVersion: s.sessionInfo.BuildVersion,
		Address:      s.address,
		Port:         s.port,
		Private:      s.private,
		Connected:    s.connected,
		Status:       s.status,
		GameInfo:     s.gameInfo,
		TeamInfo:     teamInfo.(models.TeamInfo),
		StopTime:     s.stopTime,
	}, nil
}

// Wait blocks until background game work, such as a summary being processed, is done.
func (s *Server) Wait() {
	s.background.Wait()
}

func (s *Server) runInBackground(task func()) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		task()
	}()
}

// sleep waits for d or until the server disconnects. It reports whether the full delay passed.
func (s *Server) sleep(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}
