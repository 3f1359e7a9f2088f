package types

import sitter "github.com/smacker/go-tree-sitter"

// EditInfo describes one buffer edit in the byte/point coordinates tree-sitter
// expects. Columns in the points are byte offsets within the line.
type EditInfo struct {
	StartIndex     uint32       // Start byte of the edit
	OldEndIndex    uint32       // End byte of the removed text
	NewEndIndex    uint32       // End byte of the inserted text
	StartPosition  sitter.Point // Start position (row, byte column)
	OldEndPosition sitter.Point // End of the removed text
	NewEndPosition sitter.Point // End of the inserted text
}

// Input converts the edit into the form accepted by sitter.Tree.Edit.
func (e EditInfo) Input() sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  e.StartIndex,
		OldEndIndex: e.OldEndIndex,
		NewEndIndex: e.NewEndIndex,
		StartPoint:  e.StartPosition,
		OldEndPoint: e.OldEndPosition,
		NewEndPoint: e.NewEndPosition,
	}
}
