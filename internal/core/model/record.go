package model

// ResultRecord is one row of the interface lookup.
type ResultRecord struct {
	IP string `json:"ip"`
}

// IPs flattens records into their ip values, preserving order.
func IPs(records []ResultRecord) []string {
	ips := make([]string, 0, len(records))
	for _, r := range records {
		ips = append(ips, r.IP)
	}
	return ips
}
