package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
	"github.com/iota-uz/iota-facility/modules/tiers/services"
)

type fakeImporter struct {
	summary importsheet.Summary
	err     error
	got     services.ImportOptions
}

func (f *fakeImporter) ImportFile(_ context.Context, _ io.Reader, opts services.ImportOptions) (importsheet.Summary, error) {
	f.got = opts
	if f.err != nil {
		return importsheet.Summary{}, f.err
	}
	s := f.summary
	s.DryRun = opts.DryRun
	return s, nil
}

func TestClassifyImportError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"duplicate", tiers.NewLegalEntityDuplicate("ACME"), exitValidation},
		{"duplicate rows", &importsheet.DuplicateRowsError{}, exitValidation},
		{"row", &importsheet.RowError{}, exitValidation},
		{"wrapped file", fmt.Errorf("read: %w", &importsheet.FileError{Cause: errors.New("zip")}), exitValidation},
		{"db", errors.New("connection refused"), exitDB},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, exitCode(classifyImportError(tc.err)))
		})
	}
}

func TestExitCode_Unclassified(t *testing.T) {
	require.Equal(t, 1, exitCode(errors.New("boom")))
	require.Equal(t, exitUsage, exitCode(fmt.Errorf("wrap: %w", withCode(exitUsage, errors.New("bad flag")))))
}

func TestImportWith_DefaultsToDryRun(t *testing.T) {
	fake := &fakeImporter{summary: importsheet.Summary{PhysicalPersons: 2, LegalEntities: 1}}
	tenant := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	var out bytes.Buffer

	err := importWith(context.Background(), fake, bytes.NewReader(nil), importOptions{
		tenantID: tenant,
		file:     "tiers.xlsx",
		maxRows:  50,
	}, &out)
	require.NoError(t, err)
	require.True(t, fake.got.DryRun)
	require.Equal(t, 50, fake.got.MaxRowsPerSheet)

	var res importResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Equal(t, "dry_run", res.Status)
	require.Equal(t, tenant.String(), res.TenantID)
	require.Equal(t, 2, res.Summary.PhysicalPersons)
}

func TestImportWith_Apply(t *testing.T) {
	fake := &fakeImporter{summary: importsheet.Summary{Relations: 3}}
	var out bytes.Buffer

	err := importWith(context.Background(), fake, bytes.NewReader(nil), importOptions{apply: true}, &out)
	require.NoError(t, err)
	require.False(t, fake.got.DryRun)
	require.Contains(t, out.String(), `"status":"applied"`)
}

func TestImportWith_ValidationFailureWritesNothing(t *testing.T) {
	fake := &fakeImporter{err: &importsheet.RowError{}}
	var out bytes.Buffer

	err := importWith(context.Background(), fake, bytes.NewReader(nil), importOptions{apply: true}, &out)
	require.Error(t, err)
	require.Equal(t, exitValidation, exitCode(err))
	require.Zero(t, out.Len())
}

func TestRootCmd_RejectsBadTenant(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"import", "--tenant", "nope", "--file", "x.xlsx"})
	cmd.SetOut(io.Discard)
	err := cmd.Execute()
	require.Error(t, err)
	require.Equal(t, exitUsage, exitCode(err))
}
