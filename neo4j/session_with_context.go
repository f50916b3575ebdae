package neo4j

import (
	"context"
	"fmt"
	"math"
	"time"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/internal/pool"
	"github.com/boltgraph/go-driver/neo4j/internal/retry"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// TransactionWork is a unit of work run against a Transaction by the legacy,
// context-less Session API.
type TransactionWork func(tx Transaction) (interface{}, error)

// ManagedTransactionWork is a unit of work run against a ManagedTransaction
// by SessionWithContext.ExecuteRead/ExecuteWrite.
type ManagedTransactionWork func(tx ManagedTransaction) (interface{}, error)

// SessionWithContext is a logical, possibly-retried sequence of work against
// one database: it borrows a pooled connection lazily, on the first
// statement, and returns it to the pool between transactions rather than
// holding one for its whole lifetime.
type SessionWithContext interface {
	// LastBookmarks reports the bookmark left by the most recently
	// completed transaction, or the session's initial bookmarks if none
	// has completed yet.
	LastBookmarks() Bookmarks
	lastBookmark() string
	// BeginTransaction opens an explicit transaction the caller commits
	// or rolls back itself.
	BeginTransaction(ctx context.Context, configurers ...func(*TransactionConfig)) (ExplicitTransaction, error)
	// ExecuteRead runs work inside a read-mode managed transaction,
	// retrying it on transient failures.
	ExecuteRead(ctx context.Context, work ManagedTransactionWork, configurers ...func(*TransactionConfig)) (interface{}, error)
	// ExecuteWrite is ExecuteRead for write-mode transactions.
	ExecuteWrite(ctx context.Context, work ManagedTransactionWork, configurers ...func(*TransactionConfig)) (interface{}, error)
	// Run executes cypher as its own auto-commit transaction.
	Run(ctx context.Context, cypher string, params map[string]interface{}, configurers ...func(*TransactionConfig)) (ResultWithContext, error)
	// Close releases any resources the session is still holding.
	Close(ctx context.Context) error

	legacy() Session
	getServerInfo(ctx context.Context) (ServerInfo, error)
}

// SessionConfig configures a new session; its zero value is a write-mode
// session against the default database with driver-chosen fetch size.
type SessionConfig struct {
	// AccessMode picks read or write routing for Run and explicit
	// transactions. ExecuteRead/ExecuteWrite ignore it - their own mode
	// argument wins.
	AccessMode AccessMode
	// Bookmarks seeds the session so the server it talks to is caused to
	// be at least as up to date as every one of them. Overwritten by
	// whatever bookmark each subsequent transaction leaves behind.
	Bookmarks Bookmarks
	// DatabaseName selects which database the session's commands run
	// against. Left empty, the routing driver resolves the user's home
	// database on first use.
	DatabaseName string
	// FetchSize caps how many records are pulled from the server per
	// batch. FetchDefault defers to the driver's own default;
	// FetchAll disables batching and pulls everything at once.
	FetchSize int
	// BoltLogger, if set, is attached to this session's connections and
	// routing-table connections. The Bolt connection emits no messages to
	// it.
	BoltLogger log.BoltLogger
	// ImpersonatedUser runs the session's commands as if issued by this
	// user instead of the driver's own authenticated identity. Combined
	// with an empty DatabaseName, the impersonated user's home database
	// is resolved rather than the driver's.
	ImpersonatedUser string
}

// FetchAll disables batching: every record of a result is fetched at once.
const FetchAll = -1

// FetchDefault defers the fetch-size decision to the driver's configuration.
const FetchDefault = 0

// sessionPool is the subset of the connection pool a session needs.
type sessionPool interface {
	Borrow(ctx context.Context, serverNames []string, wait bool, boltLogger log.BoltLogger, livenessCheckThreshold time.Duration) (idb.Connection, error)
	Return(ctx context.Context, c idb.Connection) error
	CleanUp(ctx context.Context) error
}

// boltSession is the concrete SessionWithContext: it owns at most one
// in-flight transaction at a time (explicit or auto-commit) and hands its
// connection back to the pool as soon as that transaction closes.
type boltSession struct {
	config           *Config
	router           sessionRouter
	pool             sessionPool
	defaultMode      idb.AccessMode
	bookmarks        []string
	databaseName     string
	homeDbUnresolved bool
	impersonatedUser string
	fetchSize        int
	boltLogger       log.BoltLogger

	explicitTx   *explicitTransaction
	autocommitTx *autocommitTransaction

	log          log.Logger
	logId        string
	now          func() time.Time
	sleep        func(d time.Duration)
	throttleTime time.Duration
}

func newBoltSession(config *Config, sessConfig SessionConfig, router sessionRouter, pool sessionPool, logger log.Logger) *boltSession {
	logId := log.NewId()
	logger.Debugf(log.Session, logId, "Created with context")

	fetchSize := config.FetchSize
	if sessConfig.FetchSize != FetchDefault {
		fetchSize = sessConfig.FetchSize
	}

	return &boltSession{
		config:           config,
		router:           router,
		pool:             pool,
		defaultMode:      idb.AccessMode(sessConfig.AccessMode),
		bookmarks:        stripEmptyBookmarks(sessConfig.Bookmarks),
		databaseName:     sessConfig.DatabaseName,
		homeDbUnresolved: sessConfig.DatabaseName == "",
		impersonatedUser: sessConfig.ImpersonatedUser,
		fetchSize:        fetchSize,
		boltLogger:       sessConfig.BoltLogger,
		log:              logger,
		logId:            logId,
		now:              time.Now,
		sleep:            time.Sleep,
		throttleTime:     time.Second,
	}
}

// stripEmptyBookmarks drops any zero-length bookmark a caller passed in by
// mistake, without allocating a new slice when there's nothing to drop.
func stripEmptyBookmarks(bookmarks []string) []string {
	clean := true
	for _, b := range bookmarks {
		if len(b) == 0 {
			clean = false
			break
		}
	}
	if clean {
		return bookmarks
	}
	out := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		if len(b) > 0 {
			out = append(out, b)
		}
	}
	return out
}

func (s *boltSession) LastBookmarks() Bookmarks {
	s.captureAutocommitBookmark()
	return s.bookmarks
}

func (s *boltSession) lastBookmark() string {
	s.captureAutocommitBookmark()
	if len(s.bookmarks) == 0 {
		return ""
	}
	return s.bookmarks[len(s.bookmarks)-1]
}

// captureAutocommitBookmark pulls the bookmark off a still-open
// auto-commit result before reporting LastBookmarks/lastBookmark, since
// that result's connection hasn't been returned to the pool yet.
func (s *boltSession) captureAutocommitBookmark() {
	if s.autocommitTx != nil {
		s.captureBookmark(s.autocommitTx.conn)
	}
}

// guardSinglePendingTx rejects starting new work while an explicit
// transaction is still open, and closes out a finished auto-commit result
// to free its connection first.
func (s *boltSession) guardSinglePendingTx(ctx context.Context) error {
	if s.explicitTx != nil {
		err := &UsageError{Message: "Session already has a pending transaction"}
		s.log.Error(log.Session, s.logId, err)
		return err
	}
	if s.autocommitTx != nil {
		s.autocommitTx.done(ctx)
	}
	return nil
}

func buildTransactionConfig(configurers []func(*TransactionConfig)) (TransactionConfig, error) {
	config := defaultTransactionConfig()
	for _, c := range configurers {
		c(&config)
	}
	if err := validateTransactionConfig(config); err != nil {
		return TransactionConfig{}, err
	}
	return config, nil
}

func (s *boltSession) txConfigFor(mode idb.AccessMode, config TransactionConfig) idb.TxConfig {
	return idb.TxConfig{
		Mode:             mode,
		Bookmarks:        s.bookmarks,
		Timeout:          config.Timeout,
		Meta:             config.Metadata,
		ImpersonatedUser: s.impersonatedUser,
	}
}

func (s *boltSession) BeginTransaction(ctx context.Context, configurers ...func(*TransactionConfig)) (ExplicitTransaction, error) {
	if err := s.guardSinglePendingTx(ctx); err != nil {
		return nil, err
	}
	config, err := buildTransactionConfig(configurers)
	if err != nil {
		return nil, err
	}

	conn, err := s.acquireConnection(ctx, s.defaultMode, pool.DefaultLivenessCheckThreshold)
	if err != nil {
		return nil, err
	}

	txHandle, err := conn.TxBegin(ctx, s.txConfigFor(s.defaultMode, config))
	if err != nil {
		s.pool.Return(ctx, conn)
		return nil, wrapError(err)
	}

	s.explicitTx = &explicitTransaction{
		conn:      conn,
		fetchSize: s.fetchSize,
		txHandle:  txHandle,
		onClosed: func() {
			s.captureBookmark(conn)
			s.pool.Return(ctx, conn)
			s.explicitTx = nil
		},
	}
	return s.explicitTx, nil
}

func (s *boltSession) ExecuteRead(ctx context.Context, work ManagedTransactionWork, configurers ...func(*TransactionConfig)) (interface{}, error) {
	return s.executeManaged(ctx, idb.ReadMode, work, configurers...)
}

func (s *boltSession) ExecuteWrite(ctx context.Context, work ManagedTransactionWork, configurers ...func(*TransactionConfig)) (interface{}, error) {
	return s.executeManaged(ctx, idb.WriteMode, work, configurers...)
}

// executeManaged drives work through retry.State: each attempt gets a
// fresh connection and transaction, and a failure that the retry state
// judges transient restarts the loop rather than propagating.
func (s *boltSession) executeManaged(ctx context.Context, mode idb.AccessMode, work ManagedTransactionWork, configurers ...func(*TransactionConfig)) (interface{}, error) {
	if err := s.guardSinglePendingTx(ctx); err != nil {
		return nil, err
	}

	config, err := buildTransactionConfig(configurers)
	if err != nil {
		return nil, err
	}

	state := s.newRetryState(ctx, mode)
	for state.Continue() {
		if done, result := s.attemptManagedTransaction(ctx, mode, config, &state, work); done {
			return result, nil
		}
	}
	return nil, s.wrapRetryOutcome(&state)
}

func (s *boltSession) newRetryState(ctx context.Context, mode idb.AccessMode) retry.State {
	return retry.State{
		MaxTransactionRetryTime: s.config.MaxTransactionRetryTime,
		Log:                     s.log,
		LogName:                 log.Session,
		LogId:                   s.logId,
		Now:                     s.now,
		Sleep:                   s.sleep,
		Throttle:                retry.Throttler(s.throttleTime),
		MaxDeadConnections:      s.config.MaxConnectionPoolSize,
		Router:                  s.router,
		DatabaseName:            s.databaseName,
		OnDeadConnection: func(server string) error {
			if mode == idb.WriteMode {
				return s.router.InvalidateWriter(ctx, s.databaseName, server)
			}
			return s.router.InvalidateReader(ctx, s.databaseName, server)
		},
	}
}

func (s *boltSession) wrapRetryOutcome(state *retry.State) error {
	if state.LastErrWasRetryable {
		err := newTransactionExecutionLimit(state.Errs, state.Causes)
		s.log.Error(log.Session, s.logId, err)
		return err
	}
	err := wrapError(state.LastErr)
	switch err.(type) {
	case *UsageError, *ConnectivityError:
		s.log.Error(log.Session, s.logId, err)
	}
	return err
}

// attemptManagedTransaction runs one retry attempt, reporting any failure to
// state itself (along with the connection it came from, where one was
// obtained) and returning done=true only once a commit has actually
// succeeded.
func (s *boltSession) attemptManagedTransaction(ctx context.Context, mode idb.AccessMode, config TransactionConfig, state *retry.State, work ManagedTransactionWork) (done bool, result any) {
	conn, err := s.acquireConnection(ctx, mode, pool.DefaultLivenessCheckThreshold)
	if err != nil {
		state.OnFailure(ctx, conn, err, false)
		return false, nil
	}
	defer s.pool.Return(ctx, conn)

	txHandle, err := conn.TxBegin(ctx, s.txConfigFor(mode, config))
	if err != nil {
		state.OnFailure(ctx, conn, err, false)
		return false, nil
	}

	tx := managedTransaction{conn: conn, fetchSize: s.fetchSize, txHandle: txHandle}
	result, err = work(&tx)
	if err != nil {
		// A client-raised error signals rollback; the pool's implicit
		// RESET on return takes care of it, no explicit rollback needed.
		state.OnFailure(ctx, conn, err, false)
		return false, nil
	}

	if err := conn.TxCommit(ctx, txHandle); err != nil {
		state.OnFailure(ctx, conn, err, true)
		return false, nil
	}

	s.captureBookmark(conn)
	return true, result
}

func (s *boltSession) resolveServers(ctx context.Context, mode idb.AccessMode) ([]string, error) {
	if mode == idb.ReadMode {
		return s.router.Readers(ctx, s.bookmarks, s.databaseName, s.boltLogger)
	}
	return s.router.Writers(ctx, s.bookmarks, s.databaseName, s.boltLogger)
}

func (s *boltSession) acquireConnection(ctx context.Context, mode idb.AccessMode, livenessCheckThreshold time.Duration) (idb.Connection, error) {
	if s.config.ConnectionAcquisitionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ConnectionAcquisitionTimeout)
		if cancel != nil {
			defer cancel()
		}
		s.log.Debugf(log.Session, s.logId, "connection acquisition timeout is: %s", s.config.ConnectionAcquisitionTimeout)
	}

	if err := s.resolveHomeDatabase(ctx); err != nil {
		return nil, wrapError(err)
	}
	servers, err := s.resolveServers(ctx, mode)
	if err != nil {
		return nil, wrapError(err)
	}

	conn, err := s.pool.Borrow(ctx, servers, s.config.ConnectionAcquisitionTimeout != 0, s.boltLogger, livenessCheckThreshold)
	if err != nil {
		return nil, wrapError(err)
	}

	if s.databaseName != idb.DefaultDatabase {
		dbSelector, ok := conn.(idb.DatabaseSelector)
		if !ok {
			s.pool.Return(ctx, conn)
			return nil, &UsageError{Message: "Database does not support multi-database"}
		}
		dbSelector.SelectDatabase(s.databaseName)
	}
	return conn, nil
}

func (s *boltSession) captureBookmark(conn idb.Connection) {
	if conn == nil {
		return
	}
	if bookmark := conn.Bookmark(); len(bookmark) > 0 {
		s.bookmarks = []string{bookmark}
	}
}

func (s *boltSession) Run(ctx context.Context, cypher string, params map[string]interface{}, configurers ...func(*TransactionConfig)) (ResultWithContext, error) {
	if s.explicitTx != nil {
		err := &UsageError{Message: "Trying to run auto-commit transaction while in explicit transaction"}
		s.log.Error(log.Session, s.logId, err)
		return nil, err
	}
	if s.autocommitTx != nil {
		s.autocommitTx.done(ctx)
	}

	config, err := buildTransactionConfig(configurers)
	if err != nil {
		return nil, err
	}

	conn, err := s.acquireConnection(ctx, s.defaultMode, pool.DefaultLivenessCheckThreshold)
	if err != nil {
		return nil, err
	}

	stream, err := conn.Run(ctx,
		idb.Command{Cypher: cypher, Params: params, FetchSize: s.fetchSize},
		s.txConfigFor(s.defaultMode, config))
	if err != nil {
		s.pool.Return(ctx, conn)
		return nil, wrapError(err)
	}

	s.autocommitTx = &autocommitTransaction{
		conn: conn,
		res:  newResultWithContext(conn, stream, cypher, params),
		onClosed: func() {
			s.captureBookmark(conn)
			s.pool.Return(ctx, conn)
			s.autocommitTx = nil
		},
	}
	return s.autocommitTx.res, nil
}

func (s *boltSession) Close(ctx context.Context) error {
	var txErr error
	if s.explicitTx != nil {
		txErr = s.explicitTx.Close(ctx)
	}
	if s.autocommitTx != nil {
		s.autocommitTx.discard(ctx)
	}
	defer s.log.Debugf(log.Session, s.logId, "Closed")

	// The pool and router belong to the driver and are shared with its other
	// sessions; DriverWithContext.Close cleans them up.
	return txErr
}

func (s *boltSession) legacy() Session {
	return &session{delegate: s}
}

func (s *boltSession) getServerInfo(ctx context.Context) (ServerInfo, error) {
	if err := s.resolveHomeDatabase(ctx); err != nil {
		return nil, wrapError(err)
	}
	servers, err := s.resolveServers(ctx, idb.ReadMode)
	if err != nil {
		return nil, wrapError(err)
	}
	conn, err := s.pool.Borrow(ctx, servers, s.config.ConnectionAcquisitionTimeout != 0, s.boltLogger, 0)
	if err != nil {
		return nil, wrapError(err)
	}
	defer s.pool.Return(ctx, conn)
	return &simpleServerInfo{
		address:         conn.ServerName(),
		agent:           conn.ServerVersion(),
		protocolVersion: conn.Version(),
	}, nil
}

// resolveHomeDatabase fetches the impersonated (or driver) user's home
// database exactly once per session, the first time a connection is
// needed, then sticks with whatever name it resolved to.
func (s *boltSession) resolveHomeDatabase(ctx context.Context) error {
	if !s.homeDbUnresolved {
		return nil
	}
	defaultDb, err := s.router.GetNameOfDefaultDatabase(ctx, s.bookmarks, s.impersonatedUser, s.boltLogger)
	if err != nil {
		return err
	}
	s.log.Debugf(log.Session, s.logId, "Resolved home database, uses db '%s'", defaultDb)
	s.databaseName = defaultDb
	s.homeDbUnresolved = false
	return nil
}

// failedSession is returned in place of a *boltSession when session
// construction itself failed, so every call surfaces the same error
// instead of the caller having to nil-check a session it just created.
type failedSession struct {
	err error
}

func (s *failedSession) LastBookmarks() Bookmarks { return nil }
func (s *failedSession) lastBookmark() string     { return "" }
func (s *failedSession) BeginTransaction(context.Context, ...func(*TransactionConfig)) (ExplicitTransaction, error) {
	return nil, s.err
}
func (s *failedSession) ExecuteRead(context.Context, ManagedTransactionWork, ...func(*TransactionConfig)) (interface{}, error) {
	return nil, s.err
}
func (s *failedSession) ExecuteWrite(context.Context, ManagedTransactionWork, ...func(*TransactionConfig)) (interface{}, error) {
	return nil, s.err
}
func (s *failedSession) Run(context.Context, string, map[string]interface{}, ...func(*TransactionConfig)) (ResultWithContext, error) {
	return nil, s.err
}
func (s *failedSession) Close(context.Context) error { return s.err }
func (s *failedSession) legacy() Session             { return &erroredSession{err: s.err} }
func (s *failedSession) getServerInfo(context.Context) (ServerInfo, error) {
	return nil, s.err
}

func defaultTransactionConfig() TransactionConfig {
	return TransactionConfig{Timeout: math.MinInt, Metadata: nil}
}

func validateTransactionConfig(config TransactionConfig) error {
	if config.Timeout != math.MinInt && config.Timeout < 0 {
		return &UsageError{Message: fmt.Sprintf("Negative transaction timeouts are not allowed. Given: %d", config.Timeout)}
	}
	return nil
}
