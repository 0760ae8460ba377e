// Package graph derives the relationship graph of a snapshot from its
// foreign keys and synonym targets.
package graph

import (
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Build walks the snapshot's retained tables and synonyms and produces one
// edge per foreign key constraint and per synonym target. A target outside
// the retained set yields an unresolved edge rather than an error: filtered
// or cross-database references are documented, just not linked.
func Build(snap *model.Snapshot) *model.Graph {
	known := knownObjects(snap)

	var edges []model.RelationshipEdge
	for _, t := range snap.Tables() {
		for _, fk := range t.ForeignKeys {
			edges = append(edges, model.RelationshipEdge{
				Source:   t.ID,
				Target:   fk.Target,
				Via:      fk.Name,
				Kind:     model.EdgeForeignKey,
				Resolved: known[fk.Target.Key()],
			})
		}
	}
	for _, syn := range snap.Synonyms() {
		if syn.Target.IsZero() {
			continue
		}
		edges = append(edges, model.RelationshipEdge{
			Source: syn.ID,
			Target: syn.Target,
			Via:    syn.ID.Name,
			Kind:   model.EdgeSynonym,
			// A synonym over a database link or another database can
			// never resolve locally.
			Resolved: syn.TargetServer == "" && syn.TargetDatabase == "" &&
				known[syn.Target.Key()],
		})
	}
	return model.NewGraph(edges)
}

// knownObjects collects the keys of everything an edge could point at:
// tables, views, sequences, routines and synonyms.
func knownObjects(snap *model.Snapshot) map[string]bool {
	known := make(map[string]bool)
	for _, sc := range snap.Schemas {
		for _, t := range sc.Tables {
			known[t.ID.Key()] = true
		}
		for _, v := range sc.Views {
			known[v.ID.Key()] = true
		}
		for _, p := range sc.Procedures {
			known[p.ID.Key()] = true
		}
		for _, f := range sc.Functions {
			known[f.ID.Key()] = true
		}
		for _, seq := range sc.Sequences {
			known[seq.ID.Key()] = true
		}
		for _, syn := range sc.Synonyms {
			known[syn.ID.Key()] = true
		}
	}
	return known
}
