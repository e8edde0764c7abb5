package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"hilfo_survey_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodItemBank = `id,prompt_de,prompt_en,subscale,reversed,categories
A,A de,A en,X,false,5
B,B de,B en,X,true,5
`

const goodPagePlan = `subscales:
  - key: X
    label: {de: Skala X, en: Scale X}
pages:
  - id: consent
    kind: consent
    title: {de: Einverständnis, en: Consent}
    fields: [consent_participation]
  - id: demo
    kind: demographics
    title: {de: Person, en: About you}
    fields: [program]
  - id: items
    kind: items
    title: {de: Fragen, en: Questions}
    items: [A, B]
  - id: results
    kind: results
    title: {de: Ergebnisse, en: Results}
`

const goodFields = `fields:
  - id: consent_participation
    prompt: {de: Einverständnis, en: Consent}
    kind: single_choice
    required: true
    options:
      - {value: "yes", label: {de: Ja, en: Yes}}
      - {value: "no", label: {de: Nein, en: No}}
  - id: program
    prompt: {de: Studiengang, en: Degree program}
    kind: single_choice
    required: true
    options:
      - {value: bachelor, label: {de: Bachelor, en: Bachelor}}
      - {value: master, label: {de: Master, en: Master}}
`

// writeFixture drops the three catalog files in a temp dir, letting a
// test override any of them, and returns their paths.
func writeFixture(t *testing.T, itemBank, pagePlan, fields string) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	bankPath := filepath.Join(dir, "itembank.csv")
	planPath := filepath.Join(dir, "pages.yaml")
	fieldsPath := filepath.Join(dir, "fields.yaml")
	require.NoError(t, os.WriteFile(bankPath, []byte(itemBank), 0o644))
	require.NoError(t, os.WriteFile(planPath, []byte(pagePlan), 0o644))
	require.NoError(t, os.WriteFile(fieldsPath, []byte(fields), 0o644))
	return bankPath, planPath, fieldsPath
}

func TestLoadValidCatalog(t *testing.T) {
	bank, plan, fields := writeFixture(t, goodItemBank, goodPagePlan, goodFields)

	cat, err := Load(bank, plan, fields)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, cat.Items.ItemIDs())
	assert.Equal(t, []string{"consent_participation", "program"}, cat.FieldOrder)
	require.Len(t, cat.Plan.Pages, 4)
	assert.Equal(t, "consent", cat.Plan.First().ID)
	require.NotNil(t, cat.Plan.Results())
	assert.Equal(t, "results", cat.Plan.Results().ID)

	item, ok := cat.Items.Item("B")
	require.True(t, ok)
	assert.True(t, item.Reversed)
	assert.Equal(t, 5, item.Categories)
	assert.Equal(t, "B de", item.Prompt.DE)
	assert.Equal(t, "B en", item.Prompt.EN)
}

func TestLoadItemBankDuplicateID(t *testing.T) {
	dup := `id,prompt_de,prompt_en,subscale,reversed,categories
A,A de,A en,X,false,5
A,A2 de,A2 en,X,false,5
`
	bank, plan, fields := writeFixture(t, dup, goodPagePlan, goodFields)
	_, err := Load(bank, plan, fields)
	assert.ErrorIs(t, err, util.ErrMalformedItemBank)
}

func TestLoadItemBankUndeclaredSubScale(t *testing.T) {
	stray := `id,prompt_de,prompt_en,subscale,reversed,categories
A,A de,A en,Y,false,5
`
	bank, plan, fields := writeFixture(t, stray, goodPagePlan, goodFields)
	_, err := Load(bank, plan, fields)
	assert.ErrorIs(t, err, util.ErrMalformedItemBank)
}

func TestLoadItemBankBadHeader(t *testing.T) {
	bad := `item,text_de,text_en,scale,rev,cats
A,A de,A en,X,false,5
`
	bank, plan, fields := writeFixture(t, bad, goodPagePlan, goodFields)
	_, err := Load(bank, plan, fields)
	assert.ErrorIs(t, err, util.ErrMalformedItemBank)
}

func TestLoadItemBankTooFewCategories(t *testing.T) {
	bad := `id,prompt_de,prompt_en,subscale,reversed,categories
A,A de,A en,X,false,1
B,B de,B en,X,false,5
`
	bank, plan, fields := writeFixture(t, bad, goodPagePlan, goodFields)
	_, err := Load(bank, plan, fields)
	assert.ErrorIs(t, err, util.ErrMalformedItemBank)
}

func TestLoadZeroItemSubScale(t *testing.T) {
	plan := `subscales:
  - key: X
    label: {de: Skala X, en: Scale X}
  - key: Y
    label: {de: Skala Y, en: Scale Y}
pages:
  - id: items
    kind: items
    title: {de: Fragen, en: Questions}
    items: [A, B]
  - id: results
    kind: results
    title: {de: Ergebnisse, en: Results}
`
	bank, planPath, fields := writeFixture(t, goodItemBank, plan, goodFields)
	_, err := Load(bank, planPath, fields)
	require.ErrorIs(t, err, util.ErrMalformedItemBank)
	assert.Contains(t, err.Error(), "zero items")
}

func TestValidateDanglingItemReference(t *testing.T) {
	plan := `subscales:
  - key: X
    label: {de: Skala X, en: Scale X}
pages:
  - id: items
    kind: items
    title: {de: Fragen, en: Questions}
    items: [A, B, Z]
  - id: results
    kind: results
    title: {de: Ergebnisse, en: Results}
`
	bank, planPath, fields := writeFixture(t, goodItemBank, plan, goodFields)
	_, err := Load(bank, planPath, fields)
	assert.ErrorIs(t, err, util.ErrDanglingReference)
}

func TestValidateDanglingFieldReference(t *testing.T) {
	plan := `subscales:
  - key: X
    label: {de: Skala X, en: Scale X}
pages:
  - id: demo
    kind: demographics
    title: {de: Person, en: About you}
    fields: [no_such_field]
  - id: items
    kind: items
    title: {de: Fragen, en: Questions}
    items: [A, B]
  - id: results
    kind: results
    title: {de: Ergebnisse, en: Results}
`
	bank, planPath, fields := writeFixture(t, goodItemBank, plan, goodFields)
	_, err := Load(bank, planPath, fields)
	assert.ErrorIs(t, err, util.ErrDanglingReference)
}

func TestValidateDanglingConditionField(t *testing.T) {
	plan := `subscales:
  - key: X
    label: {de: Skala X, en: Scale X}
pages:
  - id: extra
    kind: demographics
    title: {de: Masterfragen, en: Master questions}
    condition: {field: missing, equals: master}
    fields: [program]
  - id: items
    kind: items
    title: {de: Fragen, en: Questions}
    items: [A, B]
  - id: results
    kind: results
    title: {de: Ergebnisse, en: Results}
`
	bank, planPath, fields := writeFixture(t, goodItemBank, plan, goodFields)
	_, err := Load(bank, planPath, fields)
	assert.ErrorIs(t, err, util.ErrDanglingReference)
}

func TestValidateMissingResultsPage(t *testing.T) {
	plan := `subscales:
  - key: X
    label: {de: Skala X, en: Scale X}
pages:
  - id: items
    kind: items
    title: {de: Fragen, en: Questions}
    items: [A, B]
`
	bank, planPath, fields := writeFixture(t, goodItemBank, plan, goodFields)
	_, err := Load(bank, planPath, fields)
	require.ErrorIs(t, err, util.ErrDanglingReference)
	assert.Contains(t, err.Error(), "results")
}

func TestValidateDuplicatePageID(t *testing.T) {
	plan := `subscales:
  - key: X
    label: {de: Skala X, en: Scale X}
pages:
  - id: items
    kind: items
    title: {de: Fragen, en: Questions}
    items: [A]
  - id: items
    kind: items
    title: {de: Fragen, en: Questions}
    items: [B]
  - id: results
    kind: results
    title: {de: Ergebnisse, en: Results}
`
	bank, planPath, fields := writeFixture(t, goodItemBank, plan, goodFields)
	_, err := Load(bank, planPath, fields)
	assert.ErrorIs(t, err, util.ErrDanglingReference)
}

func TestLoadFieldsUnknownKind(t *testing.T) {
	bad := `fields:
  - id: consent_participation
    prompt: {de: Einverständnis, en: Consent}
    kind: dropdown
    required: true
  - id: program
    prompt: {de: Studiengang, en: Degree program}
    kind: single_choice
    required: true
`
	bank, plan, fields := writeFixture(t, goodItemBank, goodPagePlan, bad)
	_, err := Load(bank, plan, fields)
	assert.ErrorIs(t, err, util.ErrDanglingReference)
}

func TestLoadDuplicateSubScale(t *testing.T) {
	plan := `subscales:
  - key: X
    label: {de: Skala X, en: Scale X}
  - key: X
    label: {de: Nochmal X, en: X again}
pages:
  - id: results
    kind: results
    title: {de: Ergebnisse, en: Results}
`
	bank, planPath, fields := writeFixture(t, goodItemBank, plan, goodFields)
	_, err := Load(bank, planPath, fields)
	assert.ErrorIs(t, err, util.ErrMalformedItemBank)
}

func TestLoadMissingFile(t *testing.T) {
	bank, plan, _ := writeFixture(t, goodItemBank, goodPagePlan, goodFields)
	_, err := Load(bank, plan, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
