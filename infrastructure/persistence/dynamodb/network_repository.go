package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crosstalk/application/ports"
	"crosstalk/domain/analysis"
	"crosstalk/domain/core/aggregates"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/infrastructure/persistence/schema"
	pkgerrors "crosstalk/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// NetworkRepository implements the NetworkRepository port using
// DynamoDB single-table storage
type NetworkRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewNetworkRepository creates a new NetworkRepository
func NewNetworkRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.NetworkRepository {
	return &NetworkRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// documentMigrator upgrades matrix and linkage payloads written under
// older schema versions when they are read back
var documentMigrator = schema.DefaultMigrator()

// networkItem represents the DynamoDB item structure for a network.
// The matrix, linkage, and ligand sums are stored as JSON documents;
// they are read and written whole, so there is nothing to query inside
// them.
type networkItem struct {
	PK         string            `dynamodbav:"PK"`
	SK         string            `dynamodbav:"SK"`
	GSI1PK     string            `dynamodbav:"GSI1PK"` // For network lookups by ID
	GSI1SK     string            `dynamodbav:"GSI1SK"` // Always "METADATA"
	EntityType string            `dynamodbav:"EntityType"`
	NetworkID  string            `dynamodbav:"NetworkID"`
	UserID     string            `dynamodbav:"UserID"`
	Name       string            `dynamodbav:"Name"`
	Levels     []string          `dynamodbav:"Levels"`
	Genes      []string          `dynamodbav:"Genes"`
	Colors     map[string]string `dynamodbav:"Colors,omitempty"`
	Matrix     string            `dynamodbav:"Matrix"`
	Linkage    string            `dynamodbav:"Linkage"`
	LigandSums string            `dynamodbav:"LigandSums"`
	CreatedAt  string            `dynamodbav:"CreatedAt"`
	UpdatedAt  string            `dynamodbav:"UpdatedAt"`
	Version    int               `dynamodbav:"Version"`
}

// matrixRecord is the JSON shape of a stored signaling matrix
type matrixRecord struct {
	Rows []string    `json:"rows"`
	Cols []string    `json:"cols"`
	Data [][]float64 `json:"data"`
}

// linkageRecord preserves the insertion order of the linkage index
type linkageRecord struct {
	Clusters  []linkEntry `json:"clusters"`
	TFs       []linkEntry `json:"tfs"`
	Receptors []linkEntry `json:"receptors"`
}

type linkEntry struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Save persists a network to DynamoDB
func (r *NetworkRepository) Save(ctx context.Context, network *aggregates.SignalingNetwork) error {
	item, err := r.toItem(network)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save network to DynamoDB",
			zap.Error(err),
			zap.String("networkID", network.ID().String()),
		)
		return pkgerrors.NewDatabaseError("save network", err)
	}

	r.logger.Info("Network saved",
		zap.String("networkID", network.ID().String()),
		zap.String("userID", network.UserID()),
		zap.Int("clusters", len(network.Levels())),
		zap.Int("version", network.Version()),
	)

	return nil
}

// GetByID retrieves a network by its ID using GSI1
func (r *NetworkRepository) GetByID(ctx context.Context, id valueobjects.NetworkID) (*aggregates.SignalingNetwork, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("NETWORK#%s", id.String())},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query network", err)
	}

	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("network")
	}

	var item networkItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network: %w", err)
	}

	return r.fromItem(item)
}

// GetByUserID retrieves all networks owned by a user
func (r *NetworkRepository) GetByUserID(ctx context.Context, userID string) ([]*aggregates.SignalingNetwork, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "NETWORK#"},
		},
	}

	networks := make([]*aggregates.SignalingNetwork, 0)

	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query networks", err)
		}

		for _, raw := range page.Items {
			var item networkItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal network item", zap.Error(err))
				continue
			}
			network, err := r.fromItem(item)
			if err != nil {
				r.logger.Warn("Failed to reconstruct network",
					zap.String("networkID", item.NetworkID),
					zap.Error(err),
				)
				continue
			}
			networks = append(networks, network)
		}
	}

	return networks, nil
}

// Delete removes a network
func (r *NetworkRepository) Delete(ctx context.Context, id valueobjects.NetworkID) error {
	// Resolve the user to build the primary key
	network, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", network.UserID())},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("NETWORK#%s", id.String())},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return pkgerrors.NewDatabaseError("delete network", err)
	}

	r.logger.Debug("Network deleted",
		zap.String("networkID", id.String()),
		zap.String("userID", network.UserID()),
	)

	return nil
}

func (r *NetworkRepository) toItem(network *aggregates.SignalingNetwork) (networkItem, error) {
	matrix := network.Matrix()
	record := matrixRecord{Data: matrix.Data()}
	for _, key := range matrix.Rows() {
		record.Rows = append(record.Rows, key.String())
	}
	for _, key := range matrix.Cols() {
		record.Cols = append(record.Cols, key.String())
	}
	matrixJSON, err := schema.Marshal(record, schema.CurrentMatrixVersion)
	if err != nil {
		return networkItem{}, fmt.Errorf("failed to encode matrix: %w", err)
	}

	linkage := network.Linkage()
	linkRec := linkageRecord{}
	for _, cluster := range linkage.Clusters() {
		tfs := linkage.TFsFor(cluster)
		linkRec.Clusters = append(linkRec.Clusters, linkEntry{Key: cluster, Values: tfs})
		for _, tf := range tfs {
			if containsKey(linkRec.TFs, tf) {
				continue
			}
			receptors := linkage.ReceptorsFor(tf)
			linkRec.TFs = append(linkRec.TFs, linkEntry{Key: tf, Values: receptors})
			for _, receptor := range receptors {
				if containsKey(linkRec.Receptors, receptor) {
					continue
				}
				linkRec.Receptors = append(linkRec.Receptors, linkEntry{Key: receptor, Values: linkage.LigandsFor(receptor)})
			}
		}
	}
	linkageJSON, err := schema.Marshal(linkRec, schema.CurrentLinkageVersion)
	if err != nil {
		return networkItem{}, fmt.Errorf("failed to encode linkage: %w", err)
	}

	sumsJSON, err := json.Marshal(network.LigandSums())
	if err != nil {
		return networkItem{}, fmt.Errorf("failed to encode ligand sums: %w", err)
	}

	return networkItem{
		PK:         fmt.Sprintf("USER#%s", network.UserID()),
		SK:         fmt.Sprintf("NETWORK#%s", network.ID().String()),
		GSI1PK:     fmt.Sprintf("NETWORK#%s", network.ID().String()),
		GSI1SK:     "METADATA",
		EntityType: "NETWORK",
		NetworkID:  network.ID().String(),
		UserID:     network.UserID(),
		Name:       network.Name(),
		Levels:     network.Levels(),
		Genes:      network.Genes(),
		Colors:     network.Colors(),
		Matrix:     string(matrixJSON),
		Linkage:    string(linkageJSON),
		LigandSums: string(sumsJSON),
		CreatedAt:  network.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:  network.UpdatedAt().Format(time.RFC3339Nano),
		Version:    network.Version(),
	}, nil
}

func (r *NetworkRepository) fromItem(item networkItem) (*aggregates.SignalingNetwork, error) {
	id, err := valueobjects.NewNetworkIDFromString(item.NetworkID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored network ID: %w", err)
	}

	matrixRaw, matrixVersion, err := schema.Unmarshal([]byte(item.Matrix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode matrix envelope: %w", err)
	}
	matrixRaw, err = documentMigrator.Upgrade(schema.DocumentMatrix, matrixVersion, matrixRaw, schema.CurrentMatrixVersion)
	if err != nil {
		return nil, err
	}
	var record matrixRecord
	if err := json.Unmarshal(matrixRaw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode matrix: %w", err)
	}
	rows, err := parseClusterKeys(record.Rows)
	if err != nil {
		return nil, err
	}
	cols, err := parseClusterKeys(record.Cols)
	if err != nil {
		return nil, err
	}
	matrix, err := analysis.ReconstructSignalingMatrix(rows, cols, record.Data)
	if err != nil {
		return nil, err
	}

	linkageRaw, linkageVersion, err := schema.Unmarshal([]byte(item.Linkage))
	if err != nil {
		return nil, fmt.Errorf("failed to decode linkage envelope: %w", err)
	}
	linkageRaw, err = documentMigrator.Upgrade(schema.DocumentLinkage, linkageVersion, linkageRaw, schema.CurrentLinkageVersion)
	if err != nil {
		return nil, err
	}
	var linkRec linkageRecord
	if err := json.Unmarshal(linkageRaw, &linkRec); err != nil {
		return nil, fmt.Errorf("failed to decode linkage: %w", err)
	}
	linkage := analysis.NewLinkageIndex()
	for _, entry := range linkRec.Clusters {
		linkage.LinkClusterTFs(entry.Key, entry.Values...)
	}
	for _, entry := range linkRec.TFs {
		linkage.LinkTFReceptors(entry.Key, entry.Values...)
	}
	for _, entry := range linkRec.Receptors {
		linkage.LinkReceptorLigands(entry.Key, entry.Values...)
	}

	var ligandSums map[string]map[string]float64
	if item.LigandSums != "" {
		if err := json.Unmarshal([]byte(item.LigandSums), &ligandSums); err != nil {
			return nil, fmt.Errorf("failed to decode ligand sums: %w", err)
		}
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid stored CreatedAt: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid stored UpdatedAt: %w", err)
	}

	return aggregates.ReconstructNetwork(
		id,
		item.UserID,
		item.Name,
		matrix,
		linkage,
		item.Levels,
		ligandSums,
		item.Genes,
		item.Colors,
		createdAt,
		updatedAt,
		item.Version,
	)
}

func parseClusterKeys(keys []string) ([]valueobjects.ClusterKey, error) {
	out := make([]valueobjects.ClusterKey, len(keys))
	for i, raw := range keys {
		key, err := valueobjects.ParseClusterKey(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid stored cluster key %q: %w", raw, err)
		}
		out[i] = key
	}
	return out, nil
}

func containsKey(entries []linkEntry, key string) bool {
	for _, e := range entries {
		if e.Key == key {
			return true
		}
	}
	return false
}
