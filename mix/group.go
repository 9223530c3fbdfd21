package mix

import "fmt"

// A Group is a channel that owns an ordered set of member channels. Members
// only animate while their group's cached animating state says the group is
// computing; the mixer settles every group before any member reads that
// state.
type Group struct {
	Channel
	members []*Channel
}

// AddMember appends a channel to the group. A channel may belong to at most
// one group.
func (g *Group) AddMember(c *Channel) error {
	if c.group != nil {
		return fmt.Errorf("mix: channel [%s] already belongs to group [%s]", c.label, c.group.label)
	}
	if c.IsGroup() {
		return fmt.Errorf("mix: may not nest group [%s] inside group [%s]", c.label, g.label)
	}
	c.group = g
	g.members = append(g.members, c)
	return nil
}

// RemoveMember detaches a channel from the group.
func (g *Group) RemoveMember(c *Channel) error {
	for i, member := range g.members {
		if member == c {
			g.members = append(g.members[:i], g.members[i+1:]...)
			c.group = nil
			return nil
		}
	}
	return fmt.Errorf("mix: channel [%s] is not a member of group [%s]", c.label, g.label)
}

// Members returns the group's member channels in order.
func (g *Group) Members() []*Channel {
	return g.members
}
