package merge

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/BayFX/omtsf-sub000/internal/boundaryhash"
	omtsferrors "github.com/BayFX/omtsf-sub000/internal/errors"
	"github.com/BayFX/omtsf-sub000/internal/identity"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
	"github.com/BayFX/omtsf-sub000/internal/unionfind"
	"github.com/BayFX/omtsf-sub000/internal/validation"
)

// Merge merges two or more OMTSF files into a single deduplicated file
// using the default Config (group size limit 50, same_as threshold
// Definite). Call MergeWithConfig for custom configuration.
func Merge(files []*omtsf.File) (*Output, error) {
	return MergeWithConfig(files, DefaultConfig())
}

// MergeWithConfig runs the full merge pipeline (spec.md §4.5):
//
//  1. Concatenate nodes from every file, tracking each node's origin file.
//  2. Build an identifier index, excluding internal-scheme and
//     ANNULLED-LEI identifiers.
//  3. Union-find over pairwise identifiers_match within each bucket.
//  4. Concatenate edges and extend merge groups via qualifying same_as
//     edges, resolved per-file since NodeId strings are file-local.
//  5. Emit an OversizedMergeGroup warning for any group over the
//     configured size limit.
//  6. Merge each node group into one output node: identifiers and labels
//     are set-unioned; name/jurisdiction/status go through full
//     conflict-detecting scalar merge; every other scalar field is copied
//     from the group's representative (lowest-ordinal) member.
//  7. Merge edges the same way, bucketed by resolved endpoint
//     representatives, type, and EdgesMatch; same_as edges are never
//     merged and are retained individually with rewritten endpoints.
//  8. Assemble the merged file's header deterministically and mint a
//     fresh FileSalt.
//  9. Revalidate the merged output at L1; a failure here indicates a
//     pipeline bug, not a problem with the inputs.
func MergeWithConfig(files []*omtsf.File, config Config) (*Output, error) {
	if len(files) == 0 {
		return nil, omtsferrors.NoInputFiles()
	}

	sourceLabels := make([]string, len(files))
	for i := range files {
		sourceLabels[i] = fmt.Sprintf("file_%d", i)
	}

	// Step 1: concatenate nodes.
	var allNodes []omtsf.Node
	var nodeOrigins []int
	for fi, f := range files {
		for _, n := range f.Nodes {
			allNodes = append(allNodes, n)
			nodeOrigins = append(nodeOrigins, fi)
		}
	}
	totalNodes := len(allNodes)

	// Step 2: identifier index, filtering internal scheme and ANNULLED LEIs.
	idIndex := make(map[string][]int)
	for idx, n := range allNodes {
		for _, id := range n.Identifiers {
			if id.IsInternal() || id.IsLEIAnnulled() {
				continue
			}
			idIndex[id.CanonicalKey()] = append(idIndex[id.CanonicalKey()], idx)
		}
	}

	// Step 3: union-find over identifier matches.
	uf := unionfind.New(totalNodes)
	for _, indices := range idIndex {
		if len(indices) < 2 {
			continue
		}
		for i := 0; i < len(indices); i++ {
			for j := i + 1; j < len(indices); j++ {
				a, b := indices[i], indices[j]
				if nodePairIdentifiersMatch(&allNodes[a], &allNodes[b]) {
					uf.Union(a, b)
				}
			}
		}
	}

	// Step 4: concatenate edges, then extend merge groups via same_as.
	var allEdges []omtsf.Edge
	var edgeOrigins []int
	perFileIDMaps := make([]map[string]int, len(files))
	offset := 0
	for fi, f := range files {
		m := make(map[string]int, len(f.Nodes))
		for li, n := range f.Nodes {
			m[string(n.Id)] = offset + li
		}
		perFileIDMaps[fi] = m
		offset += len(f.Nodes)
	}
	for fi, f := range files {
		for _, e := range f.Edges {
			allEdges = append(allEdges, e)
			edgeOrigins = append(edgeOrigins, fi)
		}
	}

	for ei, e := range allEdges {
		if e.EdgeType.IsExtension() || e.EdgeType.Known != omtsf.EdgeTypeSameAs {
			continue
		}
		idMap := perFileIDMaps[edgeOrigins[ei]]
		if !config.SameAsThreshold.Honours(sameAsConfidence(e)) {
			continue
		}
		srcOrd, ok := idMap[string(e.Source)]
		if !ok {
			continue
		}
		tgtOrd, ok := idMap[string(e.Target)]
		if !ok {
			continue
		}
		uf.Union(srcOrd, tgtOrd)
	}

	// Step 5: merge-group size warnings.
	var warnings []OversizedMergeGroup
	if totalNodes > 0 {
		groupSizes := make(map[int]int)
		for i := 0; i < totalNodes; i++ {
			groupSizes[uf.Find(i)]++
		}
		reps := make([]int, 0, len(groupSizes))
		for r := range groupSizes {
			reps = append(reps, r)
		}
		sort.Ints(reps)
		for _, r := range reps {
			size := groupSizes[r]
			if size > config.GroupSizeLimit {
				warnings = append(warnings, OversizedMergeGroup{
					RepresentativeOrdinal: r,
					GroupSize:             size,
					Limit:                 config.GroupSizeLimit,
				})
			}
		}
	}

	// Step 6: merge node groups into output nodes.
	groups := make(map[int][]int)
	for i := 0; i < totalNodes; i++ {
		rep := uf.Find(i)
		groups[rep] = append(groups[rep], i)
	}

	type groupSortKey struct {
		minCanonical string
		rep          int
	}
	groupKeys := make([]groupSortKey, 0, len(groups))
	for rep, members := range groups {
		min := ""
		for _, ord := range members {
			for _, id := range allNodes[ord].Identifiers {
				if id.IsInternal() || id.IsLEIAnnulled() {
					continue
				}
				k := id.CanonicalKey()
				if min == "" || k < min {
					min = k
				}
			}
		}
		groupKeys = append(groupKeys, groupSortKey{min, rep})
	}
	sort.Slice(groupKeys, func(i, j int) bool {
		if groupKeys[i].minCanonical != groupKeys[j].minCanonical {
			return groupKeys[i].minCanonical < groupKeys[j].minCanonical
		}
		return groupKeys[i].rep < groupKeys[j].rep
	})

	repToNewID := make(map[int]omtsf.NodeId, len(groupKeys))
	newIDOrder := make([]int, len(groupKeys)) // rep, in output order
	for idx, gk := range groupKeys {
		newID, err := omtsf.NewNodeId(fmt.Sprintf("n-%d", idx))
		if err != nil {
			return nil, omtsferrors.Internalf("building merged node id: %v", err)
		}
		repToNewID[gk.rep] = newID
		newIDOrder[idx] = gk.rep
	}

	conflictCount := 0
	outputNodes := make([]omtsf.Node, 0, len(newIDOrder))
	for _, rep := range newIDOrder {
		members := groups[rep]
		newID := repToNewID[rep]

		srcLabelsForGroup := make([]string, len(members))
		for i, ord := range members {
			srcLabelsForGroup[i] = sourceLabels[nodeOrigins[ord]]
		}

		idSlices := make([][]omtsf.Identifier, len(members))
		labelSlices := make([][]omtsf.Label, len(members))
		nameInputs := make([]scalarInput[string], len(members))
		jurInputs := make([]scalarInput[omtsf.CountryCode], len(members))
		statusInputs := make([]scalarInput[string], len(members))
		for i, ord := range members {
			n := &allNodes[ord]
			idSlices[i] = n.Identifiers
			labelSlices[i] = n.Labels
			nameInputs[i] = scalarInput[string]{value: n.Name, source: srcLabelsForGroup[i]}
			jurInputs[i] = scalarInput[omtsf.CountryCode]{value: n.Jurisdiction, source: srcLabelsForGroup[i]}
			statusInputs[i] = scalarInput[string]{value: n.Status, source: srcLabelsForGroup[i]}
		}

		mergedIds := mergeIdentifiers(idSlices)
		mergedLabels := mergeLabels(labelSlices)
		mergedName, nameConflict := resolveScalarMerge(nameInputs, "name")
		mergedJur, jurConflict := resolveScalarMerge(jurInputs, "jurisdiction")
		mergedStatus, statusConflict := resolveScalarMerge(statusInputs, "status")

		var nodeConflicts []Conflict
		for _, c := range []*Conflict{nameConflict, jurConflict, statusConflict} {
			if c != nil {
				nodeConflicts = append(nodeConflicts, *c)
			}
		}
		conflictCount += len(nodeConflicts)

		extra := map[string]interface{}{}
		if cv := buildConflictsValue(nodeConflicts); cv != nil {
			extra["_conflicts"] = cv
		}

		repNode := &allNodes[members[0]]
		outputNodes = append(outputNodes, omtsf.Node{
			Id:                    newID,
			NodeType:              repNode.NodeType,
			Identifiers:           mergedIds,
			Labels:                mergedLabels,
			Name:                  mergedName,
			Jurisdiction:          mergedJur,
			Status:                mergedStatus,
			GovernanceStructure:   repNode.GovernanceStructure,
			Operator:              repNode.Operator,
			Address:               repNode.Address,
			GeoCoord:              repNode.GeoCoord,
			CommodityCode:         repNode.CommodityCode,
			Unit:                  repNode.Unit,
			Role:                  repNode.Role,
			AttestationType:       repNode.AttestationType,
			Standard:              repNode.Standard,
			Issuer:                repNode.Issuer,
			ValidFrom:             repNode.ValidFrom,
			ValidTo:               repNode.ValidTo,
			Outcome:               repNode.Outcome,
			AttestationStatus:     repNode.AttestationStatus,
			Reference:             repNode.Reference,
			RiskSeverity:          repNode.RiskSeverity,
			RiskLikelihood:        repNode.RiskLikelihood,
			LotId:                 repNode.LotId,
			Quantity:              repNode.Quantity,
			ProductionDate:        repNode.ProductionDate,
			OriginCountry:         repNode.OriginCountry,
			DirectEmissionsCO2e:   repNode.DirectEmissionsCO2e,
			IndirectEmissionsCO2e: repNode.IndirectEmissionsCO2e,
			EmissionFactorSource:  repNode.EmissionFactorSource,
			InstallationId:        repNode.InstallationId,
			Extra:                 extra,
		})
	}

	// Step 7: merge edges.
	nodeReps := make([]int, totalNodes)
	for i := 0; i < totalNodes; i++ {
		nodeReps[i] = uf.Find(i)
	}

	edgeNodeOrdinal := func(edgeIdx int, id omtsf.NodeId) (int, bool) {
		ord, ok := perFileIDMaps[edgeOrigins[edgeIdx]][string(id)]
		return ord, ok
	}
	resolveRep := func(edgeIdx int, id omtsf.NodeId) int {
		ord, ok := edgeNodeOrdinal(edgeIdx, id)
		if !ok {
			return -1
		}
		return nodeReps[ord]
	}

	edgeCandidateIndex := make(map[identity.EdgeCompositeKey][]int)
	for ei, e := range allEdges {
		srcRep := resolveRep(ei, e.Source)
		tgtRep := resolveRep(ei, e.Target)
		if srcRep == -1 || tgtRep == -1 {
			continue
		}
		key, ok := identity.CompositeKey(srcRep, tgtRep, e.EdgeType)
		if !ok {
			continue // same_as: never bucketed for merging
		}
		edgeCandidateIndex[key] = append(edgeCandidateIndex[key], ei)
	}

	totalEdges := len(allEdges)
	edgeUF := unionfind.New(totalEdges)
	for _, bucket := range edgeCandidateIndex {
		if len(bucket) < 2 {
			continue
		}
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				ei, ej := bucket[i], bucket[j]
				ea, eb := &allEdges[ei], &allEdges[ej]
				if identity.EdgesMatch(resolveRep(ei, ea.Source), resolveRep(ei, ea.Target),
					resolveRep(ej, eb.Source), resolveRep(ej, eb.Target), *ea, *eb) {
					edgeUF.Union(ei, ej)
				}
			}
		}
	}

	edgeGroups := make(map[int][]int)
	for i := 0; i < totalEdges; i++ {
		rep := edgeUF.Find(i)
		edgeGroups[rep] = append(edgeGroups[rep], i)
	}

	nodeRepToCanonical := make(map[int]string)
	for idx := range allNodes {
		rep := nodeReps[idx]
		for _, id := range allNodes[idx].Identifiers {
			if id.IsInternal() || id.IsLEIAnnulled() {
				continue
			}
			cid := id.CanonicalKey()
			if cur, ok := nodeRepToCanonical[rep]; !ok || cid < cur {
				nodeRepToCanonical[rep] = cid
			}
		}
	}

	type edgeGroupSortKey struct {
		srcCanonical  string
		tgtCanonical  string
		typeStr       string
		lowestEdgeCid string
		rep           int
	}
	edgeGroupKeys := make([]edgeGroupSortKey, 0, len(edgeGroups))
	for rep, members := range edgeGroups {
		firstIdx := members[0]
		first := &allEdges[firstIdx]

		srcCanonical := ""
		if r := resolveRep(firstIdx, first.Source); r != -1 {
			srcCanonical = nodeRepToCanonical[r]
		}
		tgtCanonical := ""
		if r := resolveRep(firstIdx, first.Target); r != -1 {
			tgtCanonical = nodeRepToCanonical[r]
		}

		lowestEdgeCid := ""
		for _, ord := range members {
			for _, id := range allEdges[ord].Identifiers {
				if id.IsInternal() {
					continue
				}
				cid := id.CanonicalKey()
				if lowestEdgeCid == "" || cid < lowestEdgeCid {
					lowestEdgeCid = cid
				}
			}
		}

		edgeGroupKeys = append(edgeGroupKeys, edgeGroupSortKey{
			srcCanonical:  srcCanonical,
			tgtCanonical:  tgtCanonical,
			typeStr:       first.EdgeType.String(),
			lowestEdgeCid: lowestEdgeCid,
			rep:           rep,
		})
	}
	sort.Slice(edgeGroupKeys, func(i, j int) bool {
		a, b := edgeGroupKeys[i], edgeGroupKeys[j]
		if a.srcCanonical != b.srcCanonical {
			return a.srcCanonical < b.srcCanonical
		}
		if a.tgtCanonical != b.tgtCanonical {
			return a.tgtCanonical < b.tgtCanonical
		}
		if a.typeStr != b.typeStr {
			return a.typeStr < b.typeStr
		}
		if a.lowestEdgeCid != b.lowestEdgeCid {
			return a.lowestEdgeCid < b.lowestEdgeCid
		}
		return a.rep < b.rep
	})

	var outputEdges []omtsf.Edge
	edgeCounter := 0
	nextEdgeID := func() (omtsf.EdgeId, error) {
		id, err := omtsf.NewEdgeId(fmt.Sprintf("e-%d", edgeCounter))
		edgeCounter++
		return id, err
	}

	for _, gk := range edgeGroupKeys {
		members := edgeGroups[gk.rep]
		firstEdge := &allEdges[members[0]]
		isSameAs := !firstEdge.EdgeType.IsExtension() && firstEdge.EdgeType.Known == omtsf.EdgeTypeSameAs

		if isSameAs {
			// same_as edges are never merged: retain each one individually
			// with endpoints rewritten to the new merged node ids.
			for _, ord := range members {
				e := &allEdges[ord]
				idMap := perFileIDMaps[edgeOrigins[ord]]
				srcOrd, ok1 := idMap[string(e.Source)]
				tgtOrd, ok2 := idMap[string(e.Target)]
				if !ok1 || !ok2 {
					continue
				}
				newSrc, ok3 := repToNewID[uf.Find(srcOrd)]
				newTgt, ok4 := repToNewID[uf.Find(tgtOrd)]
				if !ok3 || !ok4 {
					continue
				}
				newEdgeID, err := nextEdgeID()
				if err != nil {
					return nil, omtsferrors.Internalf("building merged edge id: %v", err)
				}
				outputEdges = append(outputEdges, omtsf.Edge{
					Id:          newEdgeID,
					EdgeType:    e.EdgeType,
					Source:      newSrc,
					Target:      newTgt,
					Identifiers: e.Identifiers,
					Properties:  e.Properties,
					Extra:       e.Extra,
				})
			}
			continue
		}

		idSlices := make([][]omtsf.Identifier, len(members))
		labelSlices := make([][]omtsf.Label, len(members))
		validFromInputs := make([]scalarInput[omtsf.CalendarDate], len(members))
		validToInputs := make([]scalarInput[string], len(members))
		for i, ord := range members {
			e := &allEdges[ord]
			idSlices[i] = e.Identifiers
			labelSlices[i] = e.Properties.Labels
			srcLabel := sourceLabels[edgeOrigins[ord]]
			validFromInputs[i] = scalarInput[omtsf.CalendarDate]{value: e.Properties.ValidFrom, source: srcLabel}
			validToInputs[i] = validToScalarInput(e.Properties.ValidTo, srcLabel)
		}
		mergedIds := mergeIdentifiers(idSlices)
		mergedLabels := mergeLabels(labelSlices)

		fileIdx0 := edgeOrigins[members[0]]
		idMap0 := perFileIDMaps[fileIdx0]
		srcOrd, okSrc := idMap0[string(firstEdge.Source)]
		tgtOrd, okTgt := idMap0[string(firstEdge.Target)]
		if !okSrc || !okTgt {
			continue // dangling edge
		}
		newSrc, okSrc := repToNewID[uf.Find(srcOrd)]
		newTgt, okTgt := repToNewID[uf.Find(tgtOrd)]
		if !okSrc || !okTgt {
			continue
		}

		mergedValidFrom, validFromConflict := resolveScalarMerge(validFromInputs, "valid_from")
		mergedValidTo, validToConflict := resolveScalarMerge(validToInputs, "valid_to")

		mergedProps := allEdges[members[0]].Properties
		mergedProps.Labels = mergedLabels
		mergedProps.ValidFrom = mergedValidFrom
		mergedProps.ValidTo = validToFromScalar(mergedValidTo)
		mergedProps.Extra = map[string]interface{}{}

		// Edge-level conflict recording mirrors the node path: every
		// property compared across the group that isn't already set-merged
		// (identifiers, labels) goes through resolveScalarMerge, so a
		// disagreement is recorded instead of silently taking the
		// representative edge's value. valid_from/valid_to are the only
		// scalar properties common to every edge type; type-specific
		// properties (percentage, commodity, ...) are left as the
		// representative's value, same as before.
		var edgeConflicts []Conflict
		for _, c := range []*Conflict{validFromConflict, validToConflict} {
			if c != nil {
				edgeConflicts = append(edgeConflicts, *c)
			}
		}
		conflictCount += len(edgeConflicts)
		if cv := buildConflictsValue(edgeConflicts); cv != nil {
			mergedProps.Extra["_conflicts"] = cv
		}

		newEdgeID, err := nextEdgeID()
		if err != nil {
			return nil, omtsferrors.Internalf("building merged edge id: %v", err)
		}
		outputEdges = append(outputEdges, omtsf.Edge{
			Id:          newEdgeID,
			EdgeType:    firstEdge.EdgeType,
			Source:      newSrc,
			Target:      newTgt,
			Identifiers: mergedIds,
			Properties:  mergedProps,
			Extra:       map[string]interface{}{},
		})
	}

	// Step 8: build the merged file header.
	var reportingEntities []string
	seenRE := make(map[string]bool)
	for _, f := range files {
		if f.ReportingEntity != nil {
			s := string(*f.ReportingEntity)
			if !seenRE[s] {
				seenRE[s] = true
				reportingEntities = append(reportingEntities, s)
			}
		}
	}
	sort.Strings(reportingEntities)

	var outputReportingEntity *omtsf.NodeId
	if len(reportingEntities) == 1 {
		if id, err := omtsf.NewNodeId(reportingEntities[0]); err == nil {
			outputReportingEntity = &id
		}
	}

	latestDate := files[0].SnapshotDate
	for _, f := range files[1:] {
		if f.SnapshotDate > latestDate {
			latestDate = f.SnapshotDate
		}
	}

	fileSalt, err := boundaryhash.GenerateFileSalt()
	if err != nil {
		return nil, err
	}

	sourceFilesSorted := append([]string{}, sourceLabels...)
	sort.Strings(sourceFilesSorted)
	sourceFilesSorted = dedupSortedStrings(sourceFilesSorted)

	metadata := MergeMetadata{
		MergeID:           uuid.New().String(),
		SourceFiles:       sourceFilesSorted,
		ReportingEntities: reportingEntities,
		Timestamp:         "2026-07-31T00:00:00Z",
		MergedNodeCount:   len(outputNodes),
		MergedEdgeCount:   len(outputEdges),
		ConflictCount:     conflictCount,
	}

	mergedFile := &omtsf.File{
		OmtsfVersion:    files[0].OmtsfVersion,
		SnapshotDate:    latestDate,
		FileSalt:        fileSalt,
		ReportingEntity: outputReportingEntity,
		Nodes:           outputNodes,
		Edges:           outputEdges,
		Extra:           map[string]interface{}{"merge_metadata": metadata},
	}

	// Step 9: post-merge L1 revalidation. A failure here is a pipeline
	// bug, not a problem with the inputs.
	result := validation.Validate(mergedFile, validation.ValidationConfig{RunL1: true})
	if result.HasErrors() {
		errs := result.Errors()
		msg := "unknown error"
		if len(errs) > 0 {
			msg = errs[0].Message
		}
		return nil, omtsferrors.PostMergeValidation(msg)
	}

	return &Output{
		File:          mergedFile,
		Metadata:      metadata,
		Warnings:      warnings,
		ConflictCount: conflictCount,
	}, nil
}

func dedupSortedStrings(sorted []string) []string {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

// sameAsConfidence extracts a same_as edge's confidence string, checking
// properties.Extra first and falling back to the edge-level Extra map
// (spec.md §4.5 step 3).
func sameAsConfidence(e omtsf.Edge) string {
	if v, ok := e.Properties.Extra["confidence"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if v, ok := e.Extra["confidence"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// nodePairIdentifiersMatch reports whether any identifier of a matches any
// identifier of b under identity.IdentifiersMatch.
func nodePairIdentifiersMatch(a, b *omtsf.Node) bool {
	for _, idA := range a.Identifiers {
		for _, idB := range b.Identifiers {
			if identity.IdentifiersMatch(idA, idB) {
				return true
			}
		}
	}
	return false
}
