// Package node is the client side of the TRON wallet HTTP API.
//
// Every reply, whatever its layout, goes through Normalize and comes back as
// a Response that is either successful with Data or failed with an *Error.
// Transport problems are reported separately as ErrNodeUnavailable.
//
//	n, err := node.NewHTTPNode(node.Config{FullNode: "https://api.trongrid.io"})
//	if err != nil {
//	    return err
//	}
//	resp, err := n.GetNowBlock(ctx)
//	if err != nil {
//	    return err // unreachable
//	}
//	if !resp.Success {
//	    return resp.Err()
//	}
package node
