package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/lexquery/lexquery/pkg/types"
)

// Store is the graph search backend, backed by Neo4j. Sessions are
// opened per call; the underlying driver pools connections.
type Store struct {
	client   neo4j.DriverWithContext
	database string
}

// NewStore creates a graph store. It does not dial; use
// VerifyConnectivity to check the server is reachable.
func NewStore(uri, username, password, database string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Store{
		client:   driver,
		database: database,
	}, nil
}

// VerifyConnectivity checks that the Neo4j server is reachable.
func (s *Store) VerifyConnectivity(ctx context.Context) error {
	return s.client.VerifyConnectivity(ctx)
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// SearchCases runs a case search and returns up to limit cases ordered
// by judgment date, newest first. Any driver or server failure is
// reported as a graph BackendUnavailableError.
func (s *Store) SearchCases(ctx context.Context, pred *CasePredicate, limit int) ([]types.CaseRecord, error) {
	if limit < 1 {
		return nil, types.NewValidationError("limit", fmt.Sprintf("must be at least 1, got %d", limit))
	}

	query, params := BuildCaseSearchQuery(pred, limit)

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		var cases []types.CaseRecord
		for res.Next(ctx) {
			record := res.Record()
			c, err := caseFromRecord(record)
			if err != nil {
				return nil, err
			}
			cases = append(cases, c)
		}
		return cases, res.Err()
	})
	if err != nil {
		return nil, types.NewBackendUnavailableError(types.BackendGraph, err)
	}

	return result.([]types.CaseRecord), nil
}

// UpsertCase merges a case and its court, judge, party, and legal
// issue nodes by natural key. Empty entity values are skipped, never
// merged as blank nodes.
func (s *Store) UpsertCase(ctx context.Context, rec types.CaseRecord) error {
	if err := validateCaseKey(rec.CaseNumber); err != nil {
		return err
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, upsertCaseQuery, map[string]any{
			"case_number":      rec.CaseNumber,
			"title":            rec.Title,
			"court_name":       strings.TrimSpace(rec.CourtName),
			"date_of_judgment": rec.DateOfJudgment,
			"file_name":        rec.FileName,
			"decision_summary": rec.DecisionSummary,
			"outcome":          rec.Outcome,
			"citations":        rec.Citations,
			"judges":           sanitizeList(rec.Judges),
			"petitioners":      sanitizeList(rec.Petitioners),
			"respondents":      sanitizeList(rec.Respondents),
			"legal_issues":     sanitizeList(rec.LegalIssues),
		})
		if err != nil {
			return nil, err
		}
		return nil, res.Err()
	})
	if err != nil {
		return fmt.Errorf("failed to upsert case %s: %w", rec.CaseNumber, err)
	}
	return nil
}

// CreateIndices creates the constraints and indexes the search path
// relies on. Safe to call repeatedly.
func (s *Store) CreateIndices(ctx context.Context) error {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	for _, q := range indexQueries {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, q, nil)
			if err != nil {
				return nil, err
			}
			return nil, res.Err()
		})
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// caseFromRecord maps one search result row onto a CaseRecord.
func caseFromRecord(record *neo4j.Record) (types.CaseRecord, error) {
	nodeValue, found := record.Get("c")
	if !found {
		return types.CaseRecord{}, fmt.Errorf("search row is missing the case node")
	}
	node, ok := nodeValue.(dbtype.Node)
	if !ok {
		return types.CaseRecord{}, fmt.Errorf("unexpected type for case node: got %T", nodeValue)
	}

	props := node.Props
	rec := types.CaseRecord{
		CaseNumber:      stringProp(props, "case_number"),
		Title:           stringProp(props, "title"),
		DateOfJudgment:  stringProp(props, "date_of_judgment"),
		FileName:        stringProp(props, "file_name"),
		DecisionSummary: stringProp(props, "decision_summary"),
		Outcome:         stringProp(props, "outcome"),
		Citations:       stringProp(props, "citations"),
	}

	if v, found := record.Get("court_name"); found {
		if name, ok := v.(string); ok {
			rec.CourtName = name
		}
	}
	if v, found := record.Get("judges"); found {
		if list, ok := v.([]any); ok {
			for _, j := range list {
				if name, ok := j.(string); ok && name != "" {
					rec.Judges = append(rec.Judges, name)
				}
			}
		}
	}

	return rec, nil
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
