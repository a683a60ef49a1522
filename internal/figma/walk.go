package figma

// ExtractConnections walks the document depth-first and collects every
// child with a prototype transition. The document root itself is never a
// source.
func ExtractConnections(file *File) []Connection {
	connections := []Connection{}
	if file == nil || file.Document == nil {
		return connections
	}

	var traverse func(n *Node)
	traverse = func(n *Node) {
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			if child.TransitionNodeID != "" {
				name := child.Name
				if name == "" {
					name = "Unnamed"
				}
				var duration float64
				if child.TransitionDuration != nil {
					duration = *child.TransitionDuration
				}
				connections = append(connections, Connection{
					SourceNodeID:   child.ID,
					SourceNodeName: name,
					TargetNodeID:   child.TransitionNodeID,
					Interaction:    duration,
				})
			}
			traverse(child)
		}
	}
	traverse(file.Document)
	return connections
}

// FindNode returns the first node with the given id in pre-order, or nil.
func FindNode(root *Node, id string) *Node {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, child := range root.Children {
		if found := FindNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

// FindInNodes searches every document of a nodes response for id.
func FindInNodes(resp *NodesResponse, id string) *Node {
	if resp == nil {
		return nil
	}
	// Direct hit on the requested key first; Figma keys entries by id.
	if entry, ok := resp.Nodes[id]; ok && entry != nil {
		if found := FindNode(entry.Document, id); found != nil {
			return found
		}
	}
	for _, entry := range resp.Nodes {
		if entry == nil {
			continue
		}
		if found := FindNode(entry.Document, id); found != nil {
			return found
		}
	}
	return nil
}
