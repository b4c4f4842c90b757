package driver

const (
	InterfaceIPsQuery = `
MATCH (dc:DataCenter {location: $location})-[:CONTAINS]->(r:Router)-[:ROUTES]->(i:Interface)
RETURN i.ip as ip
`

	// MergeDataCenterQuery merges one data center with its routers and
	// their interfaces in a single statement.
	MergeDataCenterQuery = `
		MERGE (dc:DataCenter {location: $location})
		ON CREATE SET dc.uuid = $uuid,
			dc.created_at = $created_at
		FOREACH (router IN $routers |
			MERGE (r:Router {name: router.name})
			ON CREATE SET r.uuid = router.uuid,
				r.created_at = $created_at
			MERGE (dc)-[:CONTAINS]->(r)
			FOREACH (iface IN router.interfaces |
				MERGE (i:Interface {ip: iface.ip})
				ON CREATE SET i.uuid = iface.uuid,
					i.created_at = $created_at
				MERGE (r)-[:ROUTES]->(i)))
		RETURN dc.uuid AS uuid
	`
)

var indexQueries = []string{
	"CREATE INDEX datacenter_location IF NOT EXISTS FOR (n:DataCenter) ON (n.location)",
	"CREATE INDEX router_name IF NOT EXISTS FOR (n:Router) ON (n.name)",
	"CREATE INDEX interface_ip IF NOT EXISTS FOR (n:Interface) ON (n.ip)",
}
