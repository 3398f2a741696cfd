package cli

import (
	"github.com/raushankrgupta/style-auditor/analysis"
	"github.com/raushankrgupta/style-auditor/report"
	"github.com/raushankrgupta/style-auditor/storage"
	"github.com/raushankrgupta/style-auditor/utils"
)

// buildArtifacts renders every output of a run. The manifest comes last so
// it can list the others and carry the report digest.
func buildArtifacts(out *analysis.Outcome, meta report.Meta) ([]storage.Artifact, error) {
	for _, s := range out.Screenshots {
		meta.Screenshots = append(meta.Screenshots, s.Name)
	}

	docs, err := report.Emit(out.Result, meta)
	if err != nil {
		return nil, err
	}
	html, err := report.RenderHTML(docs.Summary)
	if err != nil {
		return nil, err
	}

	artifacts := []storage.Artifact{
		{Name: report.StructuredName, ContentType: "application/json", Data: docs.Structured},
		{Name: report.SummaryName, ContentType: "text/markdown; charset=utf-8", Data: []byte(docs.Summary)},
		{Name: report.HTMLName, ContentType: "text/html; charset=utf-8", Data: html},
	}
	for _, s := range out.Screenshots {
		artifacts = append(artifacts, storage.Artifact{Name: s.Name, ContentType: "image/png", Data: s.Data})
	}

	m := out.Manifest
	m.ReportDigest = utils.Digest(docs.Structured)
	m.Artifacts = m.Artifacts[:0]
	for _, a := range artifacts {
		m.Artifacts = append(m.Artifacts, a.Name)
	}
	m.Artifacts = append(m.Artifacts, report.ManifestName)

	data, err := report.Manifest(m)
	if err != nil {
		return nil, err
	}
	return append(artifacts, storage.Artifact{Name: report.ManifestName, ContentType: "application/json", Data: data}), nil
}
