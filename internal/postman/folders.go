package postman

// ResourceFolder returns the index of the top-level folder with the given
// name, appending a new folder when none exists yet.
func (c *Collection) ResourceFolder(name string) int {
	return folderIndex(&c.Items, name)
}

// OperationFolder returns the indices of the resource folder and of the
// operation folder inside it, creating either one when missing.
func (c *Collection) OperationFolder(resource, operation string) (int, int) {
	r := c.ResourceFolder(resource)
	return r, folderIndex(&c.Items[r].Items, operation)
}

// Folder returns the operation folder at the given indices.
func (c *Collection) Folder(r, o int) *Item {
	return c.Items[r].Items[o]
}

// AddToOperation appends items to the (resource, operation) folder.
func (c *Collection) AddToOperation(resource, operation string, items ...*Item) {
	r, o := c.OperationFolder(resource, operation)
	folder := c.Folder(r, o)
	folder.Items = append(folder.Items, items...)
}

func folderIndex(items *[]*Item, name string) int {
	for i, it := range *items {
		if it.IsFolder() && it.Name == name {
			return i
		}
	}
	*items = append(*items, NewFolder(name))
	return len(*items) - 1
}
