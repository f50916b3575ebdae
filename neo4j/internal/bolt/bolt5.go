package bolt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/boltgraph/go-driver/neo4j/db"
	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/internal/errorutil"
	"github.com/boltgraph/go-driver/neo4j/internal/packstream"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// connState is where a protoV5 sits in the Bolt 5.x request/response cycle.
// Every exported method on protoV5 either requires a particular connState
// on entry or moves the connection to a new one on exit; assertState is the
// single gate that enforces this.
type connState int

const (
	stateUnauthorized connState = iota // HELLO/LOGON not yet completed
	stateReady                         // idle, ready to accept RUN or BEGIN
	stateStreaming                     // pulling an auto-commit result
	stateTx                            // inside an explicit transaction, idle
	stateStreamingTx                   // pulling a result within a transaction
	stateFailed                        // server reported an error, needs RESET
	stateDead                          // connection is unusable, socket may already be closed
)

// defaultFetchSize is used whenever a caller asks for the server's default
// PULL batch size by passing 0.
const defaultFetchSize = 1000

// txParams captures the BEGIN/RUN metadata that scopes one transaction:
// its access mode, bookmarks to wait on, timeout, application-supplied
// metadata, target database, user impersonation and notification filter.
type txParams struct {
	mode               idb.AccessMode
	bookmarks          []string
	timeout            time.Duration
	metadata           map[string]any
	databaseName       string
	impersonatedUser   string
	notificationConfig idb.NotificationConfig
}

func (p *txParams) wireMeta() map[string]any {
	if p == nil {
		return nil
	}
	meta := map[string]any{}
	if p.mode == idb.ReadMode {
		meta["mode"] = "r"
	}
	if len(p.bookmarks) > 0 {
		meta["bookmarks"] = p.bookmarks
	}
	if ms := int(p.timeout.Nanoseconds() / 1e6); ms > 0 {
		meta["tx_timeout"] = ms
	}
	if len(p.metadata) > 0 {
		meta["tx_metadata"] = p.metadata
	}
	if p.databaseName != idb.DefaultDatabase {
		meta["db"] = p.databaseName
	}
	if p.impersonatedUser != "" {
		meta["imp_user"] = p.impersonatedUser
	}
	p.notificationConfig.ToMeta(meta)
	return meta
}

// protoV5 drives one TCP (or TLS) socket through the Bolt 5.x message
// grammar: HELLO/LOGON to authenticate, BEGIN/COMMIT/ROLLBACK to bracket
// explicit transactions, RUN/PULL/DISCARD to stream query results, RESET to
// recover from a failure, ROUTE to fetch a routing table, and GOODBYE on
// close. It implements idb.Connection.
type protoV5 struct {
	state         connState
	minor         int
	conn          net.Conn
	queue         messageQueue
	streams       openstreams
	serverName    string
	serverVersion string
	connId        string
	logId         string
	databaseName  string
	txId          idb.TxHandle
	lastQid       int64
	bookmark      string
	birthDate     time.Time
	idleDate      time.Time
	err           error
	log           log.Logger
}

func newProtoV5(serverName string, conn net.Conn, logger log.Logger, boltLog log.BoltLogger) *protoV5 {
	now := time.Now()
	b := &protoV5{
		state:      stateUnauthorized,
		conn:       conn,
		serverName: serverName,
		birthDate:  now,
		idleDate:   now,
		log:        logger,
		lastQid:    -1,
	}
	b.queue = newMessageQueue(
		conn,
		&incoming{
			buf: make([]byte, 4096),
			hyd: hydrator{
				boltLogger: boltLog,
				boltMajor:  5,
				useUtc:     true,
			},
			connReadTimeout: -1,
		},
		&outgoing{
			chunker:    newChunker(),
			packer:     packstream.Packer{},
			onErr:      func(err error) { b.fail(err, true) },
			boltLogger: boltLog,
			useUtc:     true,
		},
		b.markActive,
		func(err error) { b.fail(err, true) },
	)
	return b
}

// --- failure and state bookkeeping -----------------------------------

// fail records err as the connection's last error, escalating its state to
// stateFailed (recoverable via RESET) or, when fatal, stateDead. Any stream
// currently in flight is failed along with the connection.
func (b *protoV5) fail(err error, fatal bool) {
	if err == nil {
		return
	}
	if b.err == nil {
		b.err = err
		b.state = stateFailed
	}
	if fatal {
		if ctxErr := handleTerminatedContextError(err, b.conn); ctxErr != nil {
			b.err = ctxErr
		}
		b.state = stateDead
	}
	if b.streams.curr != nil {
		b.streams.detach(nil, err)
		b.settleStreamingState()
	}
	if neo4jErr, ok := err.(*db.Neo4jError); ok && neo4jErr.Classification() == "ClientError" {
		b.log.Debugf(log.Bolt5, b.logId, "%s", err)
	} else {
		b.log.Error(log.Bolt5, b.logId, err)
	}
}

// settleStreamingState drops out of a streaming connState back to its idle
// counterpart once no stream is left open; a state other than the two
// streaming ones is left untouched since it reflects something gone wrong
// elsewhere (failed/dead).
func (b *protoV5) settleStreamingState() {
	if b.streams.num > 0 {
		return
	}
	switch b.state {
	case stateStreamingTx:
		b.state = stateTx
	case stateStreaming:
		b.state = stateReady
	}
}

// assertState fails fast with a descriptive error if the connection isn't
// in one of the allowed states; a prior fatal error always takes priority
// since it is almost certainly the root cause.
func (b *protoV5) assertState(allowed ...connState) error {
	if b.err != nil {
		return b.err
	}
	for _, a := range allowed {
		if b.state == a {
			return nil
		}
	}
	err := fmt.Errorf("invalid state %d, expected: %+v", b.state, allowed)
	b.log.Error(log.Bolt5, b.logId, err)
	return err
}

// assertTxHandle rejects a call made against a stale transaction handle
// without touching connection state - this guards against misuse by
// callers holding on to a transaction past its Commit/Rollback, not an
// actual protocol error.
func (b *protoV5) assertTxHandle(want, got idb.TxHandle) error {
	if want != got {
		err := errors.New(errorutil.InvalidTransactionError)
		b.log.Error(log.Bolt5, b.logId, err)
		return err
	}
	return nil
}

// roundtrip flushes whatever has been queued and blocks until every
// response for it has been dispatched, folding both the write-side error
// (b.err, set asynchronously via the outgoing queue's onErr) and the
// read-side error into a single return value. Nearly every request/response
// exchange in this protocol - HELLO, BEGIN, COMMIT, ROLLBACK, ROUTE - follows
// exactly this shape.
func (b *protoV5) roundtrip(ctx context.Context) error {
	if b.queue.send(ctx); b.err != nil {
		return b.err
	}
	if err := b.queue.receiveAll(ctx); err != nil {
		return err
	}
	return b.err
}

// --- lifecycle ---------------------------------------------------------

func (b *protoV5) Connect(
	ctx context.Context,
	minor int,
	auth map[string]any,
	userAgent string,
	routingContext map[string]string,
	notificationConfig idb.NotificationConfig,
) error {
	if err := b.assertState(stateUnauthorized); err != nil {
		return err
	}
	b.minor = minor

	hello := map[string]any{"user_agent": userAgent}
	if routingContext != nil {
		hello["routing"] = routingContext
	}
	if b.minor == 0 {
		// Bolt 5.0 has no LOGON; credentials travel inside HELLO itself.
		for k, v := range auth {
			if _, exists := hello[k]; !exists {
				hello[k] = v
			}
		}
	}
	if err := checkNotificationFiltering(notificationConfig, b); err != nil {
		return err
	}
	notificationConfig.ToMeta(hello)

	b.queue.appendHello(hello, b.helloResponseHandler())
	if b.minor > 0 {
		b.queue.appendLogon(auth, b.logonResponseHandler())
	}
	if err := b.roundtrip(ctx); err != nil {
		return err
	}

	b.state = stateReady
	b.streams.reset()
	b.log.Infof(log.Bolt5, b.logId, "Connected")
	return nil
}

func (b *protoV5) Close(ctx context.Context) {
	b.log.Infof(log.Bolt5, b.logId, "Close")
	// GOODBYE is only sent from Ready; a connection mid-stream, mid-transaction
	// or failed is brought back there with a RESET first.
	switch b.state {
	case stateStreaming, stateTx, stateStreamingTx, stateFailed:
		b.ForceReset(ctx)
	}
	if b.state == stateReady {
		b.queue.appendGoodbye()
		b.queue.send(ctx)
	}
	_ = b.conn.Close()
	b.state = stateDead
}

// --- transactions --------------------------------------------------------

func (b *protoV5) TxBegin(ctx context.Context, txConfig idb.TxConfig) (idb.TxHandle, error) {
	if b.state == stateStreaming {
		b.bufferCurrentStream(ctx)
		if b.err != nil {
			return 0, b.err
		}
	}
	b.streams.reset() // any stream still open from before becomes unreachable

	if err := b.assertState(stateReady); err != nil {
		return 0, err
	}
	if err := checkNotificationFiltering(txConfig.NotificationConfig, b); err != nil {
		return 0, err
	}

	tx := txParams{
		mode:               txConfig.Mode,
		bookmarks:          txConfig.Bookmarks,
		timeout:            txConfig.Timeout,
		metadata:           txConfig.Meta,
		databaseName:       b.databaseName,
		impersonatedUser:   txConfig.ImpersonatedUser,
		notificationConfig: txConfig.NotificationConfig,
	}
	b.queue.appendBegin(tx.wireMeta(), b.beginResponseHandler())
	if err := b.roundtrip(ctx); err != nil {
		return 0, err
	}

	b.state = stateTx
	b.txId = idb.TxHandle(time.Now().Unix())
	return b.txId, nil
}

func (b *protoV5) TxCommit(ctx context.Context, txh idb.TxHandle) error {
	if err := b.assertTxHandle(b.txId, txh); err != nil {
		return err
	}
	// A result still open outside the boundary being closed can't be
	// resumed afterward, so it is discarded rather than buffered.
	b.discardOpenStreams(ctx)
	if b.err != nil {
		return b.err
	}
	if err := b.assertState(stateTx); err != nil {
		return err
	}

	b.queue.appendCommit(b.commitResponseHandler())
	if err := b.roundtrip(ctx); err != nil {
		return err
	}
	b.state = stateReady
	return nil
}

func (b *protoV5) TxRollback(ctx context.Context, txh idb.TxHandle) error {
	if err := b.assertTxHandle(b.txId, txh); err != nil {
		return err
	}
	b.discardOpenStreams(ctx)
	if b.err != nil {
		return b.err
	}
	if err := b.assertState(stateTx); err != nil {
		return err
	}

	b.queue.appendRollback(b.rollbackResponseHandler())
	if err := b.roundtrip(ctx); err != nil {
		return err
	}
	b.state = stateReady
	return nil
}

// --- running queries and reading results --------------------------------

func (b *protoV5) Run(ctx context.Context, cmd idb.Command, txConfig idb.TxConfig) (idb.StreamHandle, error) {
	if err := b.assertState(stateStreaming, stateReady); err != nil {
		return nil, err
	}
	if err := checkNotificationFiltering(txConfig.NotificationConfig, b); err != nil {
		return nil, err
	}
	tx := txParams{
		mode:               txConfig.Mode,
		bookmarks:          txConfig.Bookmarks,
		timeout:            txConfig.Timeout,
		metadata:           txConfig.Meta,
		databaseName:       b.databaseName,
		impersonatedUser:   txConfig.ImpersonatedUser,
		notificationConfig: txConfig.NotificationConfig,
	}
	return b.runStream(ctx, cmd.Cypher, cmd.Params, cmd.FetchSize, &tx)
}

func (b *protoV5) RunTx(ctx context.Context, txh idb.TxHandle, cmd idb.Command) (idb.StreamHandle, error) {
	if err := b.assertTxHandle(b.txId, txh); err != nil {
		return nil, err
	}
	return b.runStream(ctx, cmd.Cypher, cmd.Params, cmd.FetchSize, nil)
}

func (b *protoV5) runStream(ctx context.Context, cypher string, params map[string]any, rawFetchSize int, tx *txParams) (*stream, error) {
	switch b.state {
	case stateStreaming:
		b.bufferCurrentStream(ctx)
	case stateStreamingTx:
		b.suspendCurrentStream(ctx)
	}
	if b.err != nil {
		return nil, b.err
	}
	if err := b.assertState(stateTx, stateReady, stateStreamingTx); err != nil {
		return nil, err
	}

	s := &stream{fetchSize: clampFetchSize(rawFetchSize)}
	b.queue.appendRun(cypher, params, tx.wireMeta(), b.runResponseHandler(s))
	b.queue.appendPullN(s.fetchSize, b.pullResponseHandler(s))
	if b.queue.send(ctx); b.err != nil {
		return nil, b.err
	}
	// Only the RUN response is awaited here; the PULL response rides along
	// and is picked up lazily by Next. An unhandled PULL left in flight is
	// cleaned up by a subsequent RESET.
	if err := b.queue.receive(ctx); err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}

	switch b.state {
	case stateReady:
		b.state = stateStreaming
	case stateTx:
		b.state = stateStreamingTx
	}
	return s, nil
}

func clampFetchSize(requested int) int {
	switch {
	case requested < 0:
		return -1
	case requested == 0:
		return defaultFetchSize
	default:
		return requested
	}
}

func (b *protoV5) Keys(streamHandle idb.StreamHandle) ([]string, error) {
	s, err := b.streams.getUnsafe(streamHandle)
	if err != nil {
		return nil, err
	}
	return s.keys, nil
}

func (b *protoV5) Next(ctx context.Context, streamHandle idb.StreamHandle) (*db.Record, *db.Summary, error) {
	s, err := b.streams.getUnsafe(streamHandle)
	if err != nil {
		return nil, nil, err
	}

	for {
		if ready, rec, sum, err := s.bufferedNext(); ready {
			return rec, sum, err
		}
		if s.endOfBatch {
			b.requestNextBatch(s)
			if b.queue.send(ctx); b.err != nil {
				return nil, nil, b.err
			}
			s.endOfBatch = false
		}
		if b.queue.isEmpty() {
			return nil, nil, errors.New("there should be more results to pull")
		}
		if err := b.queue.receive(ctx); err != nil {
			return nil, nil, err
		}
		if b.err != nil {
			return nil, nil, b.err
		}
	}
}

func (b *protoV5) Consume(ctx context.Context, streamHandle idb.StreamHandle) (*db.Summary, error) {
	s, err := b.streams.getUnsafe(streamHandle)
	if err != nil {
		return nil, err
	}
	if s.sum != nil || s.err != nil {
		return s.sum, s.err
	}
	if err := b.ownStreamForIO(ctx, s); err != nil {
		return nil, err
	}
	b.drainCurrentStream(ctx)
	return s.sum, s.err
}

func (b *protoV5) Buffer(ctx context.Context, streamHandle idb.StreamHandle) error {
	s, err := b.streams.getUnsafe(streamHandle)
	if err != nil {
		return err
	}
	if s.sum != nil || s.err != nil {
		return s.Err()
	}
	if err := b.ownStreamForIO(ctx, s); err != nil {
		return err
	}
	b.bufferCurrentStream(ctx)
	return s.Err()
}

// ownStreamForIO validates that s belongs to this connection and is in a
// streamable state, then makes it the current stream - pausing whatever is
// current first if it is some other stream.
func (b *protoV5) ownStreamForIO(ctx context.Context, s *stream) error {
	if err := b.streams.isSafe(s); err != nil {
		return err
	}
	if err := b.assertState(stateStreaming, stateStreamingTx); err != nil {
		return err
	}
	if s != b.streams.curr {
		b.suspendCurrentStream(ctx)
		if b.err != nil {
			return b.err
		}
		b.reviveStream(ctx, s)
	}
	return nil
}

// bufferCurrentStream pulls every remaining record of the current stream
// into memory.
func (b *protoV5) bufferCurrentStream(ctx context.Context) {
	s := b.streams.curr
	if s == nil {
		return
	}
	for {
		if err := b.queue.receiveAll(ctx); err != nil || b.err != nil {
			return
		}
		if s.sum != nil || s.err != nil {
			return
		}
		if !s.endOfBatch {
			continue
		}
		s.fetchSize = -1
		b.requestNextBatch(s)
		if b.queue.send(ctx); b.err != nil {
			return
		}
	}
}

// suspendCurrentStream awaits the in-flight batch and, once the server
// confirms more remains, parks the stream so another one can become
// current without losing its place.
func (b *protoV5) suspendCurrentStream(ctx context.Context) {
	s := b.streams.curr
	if s == nil {
		return
	}
	if err := b.queue.receiveAll(ctx); err != nil || b.err != nil {
		return
	}
	if s.sum != nil || s.err != nil {
		return
	}
	if s.endOfBatch {
		b.streams.pause()
	}
}

// reviveStream makes a previously-paused stream current again and issues
// the PULL that resumes it.
func (b *protoV5) reviveStream(ctx context.Context, s *stream) {
	b.streams.resume(s)
	b.requestNextBatch(s)
	b.queue.send(ctx)
}

// drainCurrentStream discards every remaining record of the current stream
// both locally and on the server, without materializing them.
func (b *protoV5) drainCurrentStream(ctx context.Context) {
	if b.state != stateStreaming && b.state != stateStreamingTx {
		return
	}
	s := b.streams.curr
	if s == nil {
		return
	}
	s.discarding = true
	issuedOnce := false
	for {
		if err := b.queue.receiveAll(ctx); err != nil || b.err != nil {
			return
		}
		if s.sum != nil || s.err != nil {
			return
		}
		if s.endOfBatch && issuedOnce {
			b.streams.remove(s)
			b.settleStreamingState()
			return
		}
		issuedOnce = true
		s.fetchSize = -1
		if b.state == stateStreamingTx && s.qid != b.lastQid {
			b.queue.appendDiscardNQid(s.fetchSize, s.qid, b.discardResponseHandler(s))
		} else {
			b.queue.appendDiscardN(s.fetchSize, b.discardResponseHandler(s))
		}
		if b.queue.send(ctx); b.err != nil {
			return
		}
	}
}

// discardOpenStreams drops every stream left open from before a commit or
// rollback boundary - they can't be read across it.
func (b *protoV5) discardOpenStreams(ctx context.Context) {
	if b.state != stateStreaming && b.state != stateStreamingTx {
		return
	}
	b.drainCurrentStream(ctx)
	b.streams.reset()
	b.settleStreamingState()
}

func (b *protoV5) requestNextBatch(s *stream) {
	switch {
	case b.state == stateStreaming:
		b.queue.appendPullN(s.fetchSize, b.pullResponseHandler(s))
	case b.state == stateStreamingTx && s.qid == b.lastQid:
		b.queue.appendPullN(s.fetchSize, b.pullResponseHandler(s))
	case b.state == stateStreamingTx:
		b.queue.appendPullNQid(s.fetchSize, s.qid, b.pullResponseHandler(s))
	}
}

// --- connection-level accessors -----------------------------------------

func (b *protoV5) Bookmark() string       { return b.bookmark }
func (b *protoV5) ServerName() string     { return b.serverName }
func (b *protoV5) ServerVersion() string  { return b.serverVersion }
func (b *protoV5) IsAlive() bool          { return b.state != stateDead }
func (b *protoV5) HasFailed() bool        { return b.state == stateFailed }
func (b *protoV5) Birthdate() time.Time   { return b.birthDate }
func (b *protoV5) IdleDate() time.Time    { return b.idleDate }
func (b *protoV5) SelectDatabase(name string) { b.databaseName = name }

func (b *protoV5) Version() db.ProtocolVersion {
	return db.ProtocolVersion{Major: 5, Minor: b.minor}
}

func (b *protoV5) SetBoltLogger(boltLogger log.BoltLogger) {
	b.queue.setBoltLogger(boltLogger)
}

func (b *protoV5) Reset(ctx context.Context) {
	defer func() {
		b.log.Debugf(log.Bolt5, b.logId, "Resetting connection internal state")
		b.txId = 0
		b.bookmark = ""
		b.databaseName = idb.DefaultDatabase
		b.err = nil
		b.lastQid = -1
		b.streams.reset()
	}()
	if b.state == stateReady {
		return
	}
	b.ForceReset(ctx)
}

func (b *protoV5) ForceReset(ctx context.Context) {
	if b.state == stateDead {
		return
	}
	b.err = nil // clear a Failed state; RESET is exactly what recovers from it
	if err := b.queue.receiveAll(ctx); b.err != nil || err != nil {
		return
	}
	b.queue.appendReset(b.resetResponseHandler())
	if b.queue.send(ctx); b.err != nil {
		return
	}
	if err := b.queue.receive(ctx); b.err != nil || err != nil {
		return
	}
}

func (b *protoV5) GetRoutingTable(ctx context.Context, routingContext map[string]string, bookmarks []string, database, impersonatedUser string) (*idb.RoutingTable, error) {
	if err := b.assertState(stateReady); err != nil {
		return nil, err
	}
	b.log.Infof(log.Bolt5, b.logId, "Retrieving routing table")

	extras := map[string]any{}
	if database != idb.DefaultDatabase {
		extras["db"] = database
	}
	if impersonatedUser != "" {
		extras["imp_user"] = impersonatedUser
	}

	var table *idb.RoutingTable
	b.queue.appendRoute(routingContext, bookmarks, extras, b.routeResponseHandler(&table))
	if err := b.roundtrip(ctx); err != nil {
		return nil, err
	}
	return table, nil
}

// --- response handlers ---------------------------------------------------

func (b *protoV5) helloResponseHandler() responseHandler {
	return b.expectSuccess(b.onHelloSuccess)
}

func (b *protoV5) logonResponseHandler() responseHandler {
	return b.expectSuccess(onSuccessNoOp)
}

func (b *protoV5) beginResponseHandler() responseHandler {
	return b.expectSuccess(onSuccessNoOp)
}

func (b *protoV5) commitResponseHandler() responseHandler {
	return b.expectSuccess(b.onCommitSuccess)
}

func (b *protoV5) rollbackResponseHandler() responseHandler {
	return b.expectSuccess(onSuccessNoOp)
}

func (b *protoV5) routeResponseHandler(table **idb.RoutingTable) responseHandler {
	return b.expectSuccess(func(s *success) { *table = s.routingTable })
}

func (b *protoV5) runResponseHandler(s *stream) responseHandler {
	return b.expectSuccess(func(runSuccess *success) {
		s.keys = runSuccess.fields
		s.qid = runSuccess.qid
		s.tfirst = runSuccess.tfirst
		if runSuccess.qid > -1 {
			b.lastQid = runSuccess.qid
		}
		b.streams.attach(s)
	})
}

func (b *protoV5) discardResponseHandler(s *stream) responseHandler {
	return responseHandler{
		onIgnored: func(*ignored) {
			s.err = fmt.Errorf("stream interrupted while discarding results")
			b.streams.remove(s)
			b.settleStreamingState()
		},
		onSuccess: func(discardSuccess *success) {
			if discardSuccess.hasMore {
				s.endOfBatch = true
				return
			}
			b.closeStream(s, discardSuccess)
		},
		onFailure: func(failure *db.Neo4jError) {
			s.err = failure
			b.fail(failure, isFatalError(failure))
		},
		onUnknown: func(msg any) {
			b.fail(fmt.Errorf("unknown response %v", msg), true)
		},
	}
}

func (b *protoV5) pullResponseHandler(s *stream) responseHandler {
	return responseHandler{
		onRecord: func(record *db.Record) {
			if s.discarding {
				s.emptyRecords()
			} else {
				record.Keys = s.keys
				s.push(record)
			}
			b.queue.pushFront(b.pullResponseHandler(s))
		},
		onIgnored: func(*ignored) {
			s.err = fmt.Errorf("stream interrupted while pulling results")
			b.streams.remove(s)
			b.settleStreamingState()
		},
		onSuccess: func(pullSuccess *success) {
			if s.discarding {
				s.emptyRecords()
			}
			if pullSuccess.hasMore {
				s.endOfBatch = true
				return
			}
			b.closeStream(s, pullSuccess)
		},
		onFailure: func(failure *db.Neo4jError) {
			s.err = failure
			b.fail(failure, isFatalError(failure))
		},
		onUnknown: func(msg any) {
			b.fail(fmt.Errorf("unknown response %v", msg), true)
		},
	}
}

// closeStream records the terminal summary for a fully pulled/discarded
// stream, captures its bookmark if any, and detaches it.
func (b *protoV5) closeStream(s *stream, sc *success) {
	summary := b.summaryOf(sc, s)
	if len(summary.Bookmark) > 0 {
		b.bookmark = summary.Bookmark
	}
	s.sum = summary
	b.streams.remove(s)
	b.settleStreamingState()
}

func (b *protoV5) resetResponseHandler() responseHandler {
	return responseHandler{
		onSuccess: func(*success) { b.state = stateReady },
		onFailure: func(*db.Neo4jError) { b.state = stateDead },
		onUnknown: func(any) { b.state = stateDead },
	}
}

// expectSuccess builds a responseHandler for a request that should only
// ever be answered with SUCCESS or FAILURE, wiring the connection's shared
// failure/unknown-message handling and ignoring IGNORED.
func (b *protoV5) expectSuccess(onSuccess func(*success)) responseHandler {
	return responseHandler{
		onSuccess: onSuccess,
		onFailure: b.onFailure,
		onUnknown: b.onUnknown,
		onIgnored: onIgnoredNoOp,
	}
}

func (b *protoV5) onFailure(err *db.Neo4jError) {
	b.fail(err, isFatalError(err))
}

func (b *protoV5) onUnknown(msg any) {
	b.fail(fmt.Errorf("expected success or database error, got %v", msg), true)
}

func (b *protoV5) onHelloSuccess(helloSuccess *success) {
	b.connId = helloSuccess.connectionId
	b.serverVersion = helloSuccess.server
	b.logId = fmt.Sprintf("%s@%s", b.connId, b.serverName)
	b.queue.setLogId(b.logId)
	b.applyReadTimeoutHint(helloSuccess.configurationHints)
}

func (b *protoV5) onCommitSuccess(commitSuccess *success) {
	if len(commitSuccess.bookmark) > 0 {
		b.bookmark = commitSuccess.bookmark
	}
}

func (b *protoV5) markActive() {
	b.idleDate = time.Now()
}

// applyReadTimeoutHint adopts the server-advertised
// connection.recv_timeout_seconds hint, if present and sane, as the read
// deadline budget for every subsequent receive on this connection.
func (b *protoV5) applyReadTimeoutHint(hints map[string]any) {
	raw, ok := hints[readTimeoutHintName]
	if !ok {
		return
	}
	seconds, ok := raw.(int64)
	if !ok {
		b.log.Infof(log.Bolt5, b.logId, `invalid %q value: %v, ignoring hint. Only strictly positive integer values are accepted`, readTimeoutHintName, raw)
		return
	}
	if seconds <= 0 {
		b.log.Infof(log.Bolt5, b.logId, `invalid %q integer value: %d. Only strictly positive values are accepted"`, readTimeoutHintName, seconds)
		return
	}
	b.queue.in.connReadTimeout = time.Duration(seconds) * time.Second
}

func (b *protoV5) summaryOf(s *success, stream *stream) *db.Summary {
	summary := s.summary()
	summary.Agent = b.serverVersion
	summary.Major = 5
	summary.Minor = b.minor
	summary.ServerName = b.serverName
	summary.TFirst = stream.tfirst
	return summary
}
