package schema

// Custom string types for type safety.
type (
	// Pattern represents the structural role a source file plays.
	Pattern string

	// Rating represents the qualitative band of a modularity score.
	Rating string

	// Flag represents a diagnostic emitted by the modularity scorer.
	Flag string

	// OutputMode represents the format of the output.
	OutputMode string

	// AnalysisKind represents the kind of tracked analysis run.
	AnalysisKind string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// All patterns recognized by the file classifier.
const (
	ControllerPattern      Pattern = "controller"
	DataStorePattern       Pattern = "data-store"
	RouteTablePattern      Pattern = "route-table"
	TypeDefinitionsPattern Pattern = "type-definitions"
	StateMachinePattern    Pattern = "state-machine"
	TestPattern            Pattern = "test"
	GeneratedPattern       Pattern = "generated"
	UIComponentPattern     Pattern = "ui-component"
	MiddlewarePattern      Pattern = "middleware"
	UtilityPattern         Pattern = "utility"
	NoPattern              Pattern = "none"
)

// All rating bands, best first.
const (
	EliteRating      Rating = "elite"
	GoodRating       Rating = "good"
	AcceptableRating Rating = "acceptable"
	NeedsWorkRating  Rating = "needs-work"
	PoorRating       Rating = "poor"
)

// All diagnostic flags.
const (
	NoSingleResponsibilityFlag Flag = "no-single-responsibility"
	NoInternalStructureFlag    Flag = "no-internal-structure"
	HighCouplingFlag           Flag = "high-coupling"
	LowCohesionFlag            Flag = "low-cohesion"
	UtilityGrabBagFlag         Flag = "utility-grab-bag"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All analysis kinds tracked.
const (
	ModularityKind AnalysisKind = "modularity"
	SessionsKind   AnalysisKind = "sessions"
	ReportKind     AnalysisKind = "report"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllPatterns lists every pattern in classifier precedence order, followed by NoPattern.
var AllPatterns = []Pattern{
	TestPattern,
	GeneratedPattern,
	TypeDefinitionsPattern,
	ControllerPattern,
	DataStorePattern,
	RouteTablePattern,
	StateMachinePattern,
	MiddlewarePattern,
	UIComponentPattern,
	UtilityPattern,
	NoPattern,
}

// AllRatings lists every rating band, best first.
var AllRatings = []Rating{EliteRating, GoodRating, AcceptableRating, NeedsWorkRating, PoorRating}

// ValidPatterns lists all valid pattern names.
var ValidPatterns = func() map[Pattern]struct{} {
	m := make(map[Pattern]struct{}, len(AllPatterns))
	for _, p := range AllPatterns {
		m[p] = struct{}{}
	}
	return m
}()

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
