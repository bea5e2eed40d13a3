package config

// DomainConfig holds the configurable business rules and analysis
// defaults of the signaling core
type DomainConfig struct {
	// Dataset constraints
	MaxCellsPerDataset int
	MaxGenesPerDataset int
	MinCellsPerCluster int

	// Construction thresholds
	MaxTFPValue       float64
	MinRecCorrelation float64
	MaxTFsPerCluster  int
	MaxReceptorsPerTF int

	// Rendering defaults handed to the assemblers
	DefaultEdgeWeight float64
	DefaultVertScale  float64
	DefaultNodeSize   float64

	// Performance limits
	MaxNetworksPerUser int
	MaxClustersPerView int

	// Feature flags
	EnableAsyncBuilds       bool
	EnableBuildNotification bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Dataset constraints
		MaxCellsPerDataset: 500000,
		MaxGenesPerDataset: 60000,
		MinCellsPerCluster: 3,

		// Construction thresholds
		MaxTFPValue:       0.05,
		MinRecCorrelation: 0.6,
		MaxTFsPerCluster:  25,
		MaxReceptorsPerTF: 25,

		// Rendering defaults
		DefaultEdgeWeight: 0.3,
		DefaultVertScale:  3,
		DefaultNodeSize:   10,

		// Performance limits
		MaxNetworksPerUser: 100,
		MaxClustersPerView: 200,

		// Feature flags
		EnableAsyncBuilds:       true,
		EnableBuildNotification: true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Tighter limits for production
	config.MaxCellsPerDataset = 200000
	config.MaxNetworksPerUser = 50

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Permissive thresholds so tiny fixtures still build
	config.MinCellsPerCluster = 1
	config.MaxTFPValue = 0.25
	config.MinRecCorrelation = 0.3

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}
